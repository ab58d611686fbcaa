package ingestion

import (
	"time"

	"github.com/poiesic/datamill/core"
)

// BuildMonitor provides hooks to observe a dataset build.
// Implement this interface to track intermediate steps and results.
// Hooks of concurrent builds may be called from several goroutines.
type BuildMonitor interface {
	Start(configPath string)
	AfterConfigLoaded(configPath string, cfg *BuildConfig)
	AfterSamplesLoaded(configPath string, samples []core.Sample)
	AfterCurated(configPath string, samples []core.Sample)
	AfterVersionWritten(configPath string, dir string, hash string)
	Finish(configPath string, err error, elapsed time.Duration)
}

// noopMonitor is a no-op implementation of BuildMonitor
type noopMonitor struct{}

var _ BuildMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                   {}
func (n *noopMonitor) AfterConfigLoaded(_ string, _ *BuildConfig)       {}
func (n *noopMonitor) AfterSamplesLoaded(_ string, _ []core.Sample)     {}
func (n *noopMonitor) AfterCurated(_ string, _ []core.Sample)           {}
func (n *noopMonitor) AfterVersionWritten(_ string, _ string, _ string) {}
func (n *noopMonitor) Finish(_ string, _ error, _ time.Duration)        {}
