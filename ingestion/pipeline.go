package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/curate"
	"github.com/poiesic/datamill/dataset"
	"github.com/poiesic/datamill/storage"
)

// Pipeline builds dataset versions from config files.
// A single Pipeline may run several builds concurrently.
type Pipeline struct {
	pool      *ants.Pool
	catalog   storage.DatasetCatalog
	monitor   BuildMonitor
	outputDir string
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for BuildAll.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithCatalog records every version the pipeline writes in catalog.
// The pipeline does not close the catalog.
func WithCatalog(catalog storage.DatasetCatalog) Option {
	return func(p *Pipeline) error {
		p.catalog = catalog
		return nil
	}
}

// WithDefaultOutputDir sets the output directory used when a config names
// none. Default is DefaultOutputDir.
func WithDefaultOutputDir(dir string) Option {
	return func(p *Pipeline) error {
		if dir != "" {
			p.outputDir = dir
		}
		return nil
	}
}

// WithMonitor installs hooks that observe every build.
func WithMonitor(monitor BuildMonitor) Option {
	return func(p *Pipeline) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		p.monitor = monitor
		return nil
	}
}

// NewPipeline creates a new dataset build pipeline.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		pool:      pool,
		monitor:   &noopMonitor{},
		outputDir: DefaultOutputDir,
		logger:    slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// BuildResult reports the outcome of one build.
type BuildResult struct {
	ConfigPath  string
	VersionName string
	Dir         string
	Hash        string
	NumLoaded   int
	NumSamples  int
	Err         error
}

// Build runs the full pipeline for the dataset config at configPath and
// returns the version directory. Any error aborts the build.
func (p *Pipeline) Build(ctx context.Context, configPath string) (string, error) {
	cfg, err := LoadBuildConfig(configPath, p.outputDir)
	if err != nil {
		p.monitor.Start(configPath)
		p.monitor.Finish(configPath, err, 0)
		return "", err
	}
	result := p.build(ctx, configPath, cfg)
	return result.Dir, result.Err
}

// BuildAll builds every config concurrently on the worker pool and returns
// one result per config, in argument order. Configs that fail to load are
// reported without stopping the others. Two configs that target the same
// version directory reject the whole batch before anything is written.
// The returned error joins every failed build.
func (p *Pipeline) BuildAll(ctx context.Context, configPaths ...string) ([]BuildResult, error) {
	if p.pool == nil || p.pool.IsClosed() {
		return nil, ErrPipelineReleased
	}

	results := make([]BuildResult, len(configPaths))
	configs := make([]*BuildConfig, len(configPaths))
	targets := make(map[string]string, len(configPaths))

	for i, path := range configPaths {
		results[i].ConfigPath = path
		cfg, err := LoadBuildConfig(path, p.outputDir)
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].VersionName = cfg.VersionName
		configs[i] = cfg

		target, err := filepath.Abs(filepath.Join(cfg.OutputDir, cfg.VersionName))
		if err != nil {
			return nil, err
		}
		if other, ok := targets[target]; ok {
			return nil, fmt.Errorf("%w: %s and %s both write %s", ErrDuplicateTarget, other, path, target)
		}
		targets[target] = path
	}

	var wg sync.WaitGroup
	for i, cfg := range configs {
		if cfg == nil {
			continue
		}
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			results[i] = p.build(ctx, configPaths[i], cfg)
		})
		if err != nil {
			wg.Done()
			results[i].Err = err
		}
	}
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.ConfigPath, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (p *Pipeline) build(ctx context.Context, configPath string, cfg *BuildConfig) (result BuildResult) {
	start := time.Now()
	result = BuildResult{ConfigPath: configPath, VersionName: cfg.VersionName}
	p.monitor.Start(configPath)
	defer func() {
		p.monitor.Finish(configPath, result.Err, time.Since(start))
	}()

	logger := p.logger.With("config", configPath, "version", cfg.VersionName)
	p.monitor.AfterConfigLoaded(configPath, cfg)

	if result.Err = ctx.Err(); result.Err != nil {
		return
	}
	logger.Info("ingesting", "input", cfg.InputPath, "source", cfg.Source)
	samples, err := Load(cfg.InputPath, cfg.Source)
	if err != nil {
		result.Err = err
		return
	}
	result.NumLoaded = len(samples)
	logger.Info("loaded samples", "count", len(samples))
	p.monitor.AfterSamplesLoaded(configPath, samples)

	if result.Err = ctx.Err(); result.Err != nil {
		return
	}
	samples = curate.CleanAndFilter(samples, cfg.Filter)
	logger.Info("applied cleaning and filtering", "count", len(samples))
	p.monitor.AfterCurated(configPath, samples)

	if result.Err = ctx.Err(); result.Err != nil {
		return
	}
	pending, err := dataset.PublishVersion(samples, cfg.VersionName, cfg.Document, cfg.OutputDir)
	if err != nil {
		result.Err = err
		return
	}
	if err := p.catalogVersion(ctx, cfg, &pending.Version); err != nil {
		if rbErr := pending.Revert(); rbErr != nil {
			logger.Error("failed to roll back dataset version", "dir", pending.Dir, "error", rbErr)
			err = errors.Join(err, rbErr)
		}
		result.Err = err
		return
	}
	if result.Err = pending.Keep(); result.Err != nil {
		return
	}

	result.Dir = pending.Dir
	result.Hash = pending.Metadata.DatasetHash
	result.NumSamples = pending.Metadata.NumSamples
	logger.Info("created dataset version", "dir", result.Dir, "hash", result.Hash)
	p.monitor.AfterVersionWritten(configPath, result.Dir, result.Hash)
	return
}

// catalogVersion records version in the catalog, when one is configured.
func (p *Pipeline) catalogVersion(ctx context.Context, cfg *BuildConfig, version *dataset.Version) error {
	if p.catalog == nil {
		return nil
	}
	_, err := p.catalog.AddDatasetRecords(ctx, &core.DatasetRecord{
		Name:       cfg.VersionName,
		Path:       version.Dir,
		Hash:       version.Metadata.DatasetHash,
		Source:     cfg.Source,
		NumSamples: version.Metadata.NumSamples,
	})
	if err != nil {
		return fmt.Errorf("failed to catalog %s: %w", cfg.VersionName, err)
	}
	return nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used for BuildAll after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
