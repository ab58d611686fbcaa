package dataset

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/internal/fsutil"
)

// Artifact file names inside a version directory.
const (
	DataFile     = "data.jsonl"
	MetadataFile = "metadata.json"
)

// Version describes a dataset version written to disk.
type Version struct {
	Dir      string
	Metadata core.DatasetMetadata
}

// CreateVersion writes samples and their metadata to outputDir/name and
// returns that directory.
//
// config is recorded verbatim as the metadata "config" object. outputDir and
// its parents are created as needed. A previous version with the same name is
// replaced as a whole; on failure nothing is left at the destination that was
// not there before.
func CreateVersion(samples []core.Sample, name string, config map[string]any, outputDir string) (string, error) {
	v, err := WriteVersion(samples, name, config, outputDir)
	if err != nil {
		return "", err
	}
	return v.Dir, nil
}

// WriteVersion is CreateVersion returning the written metadata as well.
func WriteVersion(samples []core.Sample, name string, config map[string]any, outputDir string) (*Version, error) {
	pending, err := PublishVersion(samples, name, config, outputDir)
	if err != nil {
		return nil, err
	}
	if err := pending.Keep(); err != nil {
		return nil, err
	}
	return &pending.Version, nil
}

// Pending is a version already visible at its destination whose previous
// contents, if any, are held aside until Keep or Revert is called.
// Exactly one of the two must be called.
type Pending struct {
	Version
	backup string
}

// Keep discards the previous contents.
func (p *Pending) Keep() error {
	if p.backup == "" {
		return nil
	}
	if err := os.RemoveAll(p.backup); err != nil {
		return fmt.Errorf("failed to remove previous version: %w", err)
	}
	p.backup = ""
	return nil
}

// Revert removes the new version and puts the previous contents back.
// When nothing was replaced the destination no longer exists afterwards.
func (p *Pending) Revert() error {
	if err := os.RemoveAll(p.Dir); err != nil {
		return fmt.Errorf("failed to remove version %s: %w", p.Dir, err)
	}
	if p.backup != "" {
		if err := os.Rename(p.backup, p.Dir); err != nil {
			return fmt.Errorf("failed to restore previous version: %w", err)
		}
		p.backup = ""
	}
	return fsutil.SyncDir(filepath.Dir(p.Dir))
}

// PublishVersion writes the version like WriteVersion but leaves the
// replaced directory in place until the returned Pending is settled.
func PublishVersion(samples []core.Sample, name string, config map[string]any, outputDir string) (*Pending, error) {
	if err := core.ValidateVersionName(name); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	staging, err := os.MkdirTemp(outputDir, "."+name+".staging-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(staging)
		}
	}()

	hash, err := writeData(filepath.Join(staging, DataFile), samples)
	if err != nil {
		return nil, err
	}

	if config == nil {
		config = map[string]any{}
	}
	meta := core.DatasetMetadata{
		DatasetVersion: name,
		NumSamples:     len(samples),
		Config:         config,
		DatasetHash:    hash,
	}
	if err := writeMetadata(filepath.Join(staging, MetadataFile), &meta); err != nil {
		return nil, err
	}
	if err := fsutil.SyncDir(staging); err != nil {
		return nil, err
	}

	target := filepath.Join(outputDir, name)
	backup, err := swapInto(staging, target)
	if err != nil {
		return nil, err
	}
	committed = true
	pending := &Pending{Version: Version{Dir: target, Metadata: meta}, backup: backup}
	if err := fsutil.SyncDir(outputDir); err != nil {
		_ = pending.Revert()
		return nil, err
	}
	return pending, nil
}

// writeData streams the canonical records to path, hashing the same bytes.
func writeData(path string, samples []core.Sample) (string, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", DataFile, err)
	}
	defer f.Close()

	h := sha256.New()
	w := bufio.NewWriter(io.MultiWriter(f, h))
	var buf []byte
	for _, s := range samples {
		buf = AppendRecord(buf[:0], s)
		if _, err := w.Write(buf); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", DataFile, err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", DataFile, err)
	}
	if err := f.Sync(); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return sum(h), nil
}

func writeMetadata(path string, meta *core.DatasetMetadata) error {
	data, err := fsutil.MarshalJSON(meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", MetadataFile, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", MetadataFile, err)
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return f.Close()
}

// swapInto moves staging to target. An existing target is first moved aside
// and its new location returned; it is restored if the second rename fails.
func swapInto(staging, target string) (string, error) {
	exists, err := fsutil.Exists(target)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := os.Rename(staging, target); err != nil {
			return "", fmt.Errorf("failed to publish version: %w", err)
		}
		return "", nil
	}

	backup, err := os.MkdirTemp(filepath.Dir(target), "."+filepath.Base(target)+".old-*")
	if err != nil {
		return "", fmt.Errorf("failed to reserve backup directory: %w", err)
	}
	// Only the unique name is needed.
	if err := os.Remove(backup); err != nil {
		return "", err
	}
	if err := os.Rename(target, backup); err != nil {
		return "", fmt.Errorf("failed to move previous version aside: %w", err)
	}
	if err := os.Rename(staging, target); err != nil {
		_ = os.Rename(backup, target)
		return "", fmt.Errorf("failed to publish version: %w", err)
	}
	return backup, nil
}
