package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/dataset"
	"github.com/poiesic/datamill/internal/fsutil"
	"github.com/poiesic/datamill/storage"
)

// Result is the outcome of auditing one version directory.
type Result struct {
	Version string
	Report  *dataset.Report

	// Err is set when the version could not be read or does not match
	// its metadata.
	Err error

	// Cataloged is true when the catalog record was added or refreshed.
	Cataloged bool
}

// Summary collects the results of one audit run.
type Summary struct {
	Results []Result

	// Orphaned lists catalog records with no version directory on disk.
	Orphaned []string

	// Pruned is true when orphaned records were deleted from the catalog.
	Pruned bool
}

// Failed returns the results that carry an error.
func (s *Summary) Failed() []Result {
	var failed []Result
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err joins every per-version error under ErrAuditFailed. It returns nil
// when every version verified.
func (s *Summary) Err() error {
	failed := s.Failed()
	if len(failed) == 0 {
		return nil
	}
	errs := make([]error, len(failed))
	for i, r := range failed {
		errs[i] = r.Err
	}
	return fmt.Errorf("%w: %d of %d versions: %w", ErrAuditFailed, len(failed), len(s.Results), errors.Join(errs...))
}

// Auditor verifies the dataset versions under a datasets directory.
type Auditor struct {
	datasetsDir    string
	catalog        storage.DatasetCatalog
	resync         bool
	prune          bool
	batchSize      int
	reportInterval int
	progress       io.Writer
	logger         *slog.Logger
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithCatalog compares the catalog against the versions on disk.
func WithCatalog(catalog storage.DatasetCatalog) Option {
	return func(a *Auditor) {
		a.catalog = catalog
	}
}

// WithResync adds or refreshes the catalog record of every version that
// verifies. Requires WithCatalog.
func WithResync(resync bool) Option {
	return func(a *Auditor) {
		a.resync = resync
	}
}

// WithPrune deletes catalog records whose version directory is gone.
// Requires WithCatalog.
func WithPrune(prune bool) Option {
	return func(a *Auditor) {
		a.prune = prune
	}
}

// WithBatchSize sets how many versions are verified between context checks.
func WithBatchSize(size int) Option {
	return func(a *Auditor) {
		a.batchSize = size
	}
}

// WithProgress writes a progress line to w every interval versions.
func WithProgress(w io.Writer, interval int) Option {
	return func(a *Auditor) {
		a.progress = w
		a.reportInterval = interval
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Auditor) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAuditor creates an auditor for the versions under datasetsDir.
func NewAuditor(datasetsDir string, opts ...Option) *Auditor {
	a := &Auditor{
		datasetsDir:    datasetsDir,
		batchSize:      DefaultBatchSize,
		reportInterval: 10,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run audits every version. Per-version failures are collected in the
// summary; the returned error covers listing, catalog, and context failures.
func (a *Auditor) Run(ctx context.Context) (*Summary, error) {
	it := NewVersionIterator(a.datasetsDir, a.batchSize)
	names, err := it.Versions()
	if err != nil {
		return nil, err
	}

	summary := &Summary{Results: make([]Result, 0, len(names))}
	tracker := NewProgressTracker(a.progress, len(names), a.reportInterval)
	tracker.Start()

	err = it.ForEach(ctx, func(batch []string) error {
		for _, name := range batch {
			result, err := a.check(ctx, name)
			if err != nil {
				return err
			}
			tracker.Record(result.Err == nil)
			summary.Results = append(summary.Results, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	tracker.Finish()

	if a.catalog != nil {
		if err := a.reconcile(ctx, names, summary); err != nil {
			return nil, err
		}
	}

	a.logger.Info("dataset audit finished",
		"dir", a.datasetsDir,
		"versions", len(summary.Results),
		"failed", len(summary.Failed()),
		"orphaned", len(summary.Orphaned),
		"elapsed", tracker.Elapsed())
	return summary, nil
}

// check verifies one version. Only catalog failures are returned as errors.
func (a *Auditor) check(ctx context.Context, name string) (Result, error) {
	dir := filepath.Join(a.datasetsDir, name)
	result := Result{Version: name}

	report, err := dataset.Verify(dir)
	if err != nil {
		result.Err = err
		a.logger.Warn("dataset version unreadable", "version", name, "err", err)
		return result, nil
	}
	result.Report = report
	if err := report.Err(); err != nil {
		result.Err = err
		a.logger.Warn("dataset version does not match metadata",
			"version", name,
			"hash_matches", report.HashMatches,
			"expected_samples", report.Expected,
			"actual_samples", report.Actual)
		return result, nil
	}

	if a.catalog == nil || !a.resync {
		return result, nil
	}
	updated, err := a.resyncRecord(ctx, name, dir, report)
	if err != nil {
		return result, fmt.Errorf("failed to catalog %s: %w", name, err)
	}
	result.Cataloged = updated
	return result, nil
}

// resyncRecord upserts the catalog record of a verified version. It keeps
// the recorded source and reports false when nothing changed.
func (a *Auditor) resyncRecord(ctx context.Context, name, dir string, report *dataset.Report) (bool, error) {
	record := &core.DatasetRecord{
		Name:       name,
		Path:       dir,
		Hash:       report.ActualHash,
		NumSamples: report.Actual,
	}

	existing, err := a.catalog.GetDatasetRecord(ctx, name)
	switch {
	case err == nil:
		if existing.Hash == record.Hash && existing.NumSamples == record.NumSamples && existing.Path == record.Path {
			return false, nil
		}
		record.Source = existing.Source
	case errors.Is(err, core.ErrNotFound):
	default:
		return false, err
	}

	if _, err := a.catalog.AddDatasetRecords(ctx, record); err != nil {
		return false, err
	}
	a.logger.Debug("cataloged dataset version", "version", name, "hash", record.Hash)
	return true, nil
}

// reconcile finds catalog records whose version exists neither under the
// audited root nor at the recorded path.
func (a *Auditor) reconcile(ctx context.Context, names []string, summary *Summary) error {
	onDisk := make(map[string]struct{}, len(names))
	for _, name := range names {
		onDisk[name] = struct{}{}
	}

	records, err := a.catalog.ListDatasetRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}
	for _, r := range records {
		if _, ok := onDisk[r.Name]; ok {
			continue
		}
		if r.Path != "" {
			exists, err := fsutil.Exists(r.Path)
			if err != nil {
				return fmt.Errorf("failed to check %s: %w", r.Path, err)
			}
			if exists {
				continue
			}
		}
		summary.Orphaned = append(summary.Orphaned, r.Name)
	}

	if !a.prune || len(summary.Orphaned) == 0 {
		return nil
	}
	if err := a.catalog.DeleteDatasetRecords(ctx, summary.Orphaned...); err != nil {
		return fmt.Errorf("failed to prune catalog: %w", err)
	}
	summary.Pruned = true
	a.logger.Info("pruned catalog records", "names", summary.Orphaned)
	return nil
}
