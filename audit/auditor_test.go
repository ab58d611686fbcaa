package audit

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/dataset"
	"github.com/poiesic/datamill/storage"
	"github.com/poiesic/datamill/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVersion(t *testing.T, root, name string, inputs ...string) string {
	t.Helper()
	samples := make([]core.Sample, len(inputs))
	for i, in := range inputs {
		samples[i] = core.Sample{ID: core.SampleID("audit", i), Input: in, Output: "out", Source: "audit"}
	}
	dir, err := dataset.CreateVersion(samples, name, map[string]any{"source": "audit"}, root)
	require.NoError(t, err)
	return dir
}

func newCatalog(t *testing.T) storage.DatasetCatalog {
	t.Helper()
	catalog, err := badger.NewMemoryCatalog()
	require.NoError(t, err)
	t.Cleanup(func() { catalog.Close() })
	return catalog
}

func TestAuditor_AllValid(t *testing.T) {
	root := t.TempDir()
	writeVersion(t, root, "v1", "a", "b")
	writeVersion(t, root, "v2", "c")

	var progress bytes.Buffer
	summary, err := NewAuditor(root, WithProgress(&progress, 1)).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, "v1", summary.Results[0].Version)
	assert.Equal(t, 2, summary.Results[0].Report.Actual)
	assert.Empty(t, summary.Failed())
	assert.NoError(t, summary.Err())
	assert.Contains(t, progress.String(), "2/2")
}

func TestAuditor_ReportsFailures(t *testing.T) {
	root := t.TempDir()
	writeVersion(t, root, "good", "a")
	tampered := writeVersion(t, root, "tampered", "a", "b")
	require.NoError(t, os.WriteFile(filepath.Join(tampered, dataset.DataFile), []byte("{}\n"), 0o644))
	broken := filepath.Join(root, "broken")
	require.NoError(t, os.MkdirAll(broken, 0o755))

	summary, err := NewAuditor(root).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 3)

	failed := summary.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, "broken", failed[0].Version)
	assert.ErrorIs(t, failed[0].Err, core.ErrNotFound)
	assert.Nil(t, failed[0].Report)
	assert.Equal(t, "tampered", failed[1].Version)
	assert.ErrorIs(t, failed[1].Err, dataset.ErrHashMismatch)
	assert.False(t, failed[1].Report.CountMatches)

	err = summary.Err()
	assert.ErrorIs(t, err, ErrAuditFailed)
	assert.ErrorIs(t, err, dataset.ErrHashMismatch)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAuditor_Resync(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeVersion(t, root, "v1", "a")
	v2 := writeVersion(t, root, "v2", "b", "c")
	catalog := newCatalog(t)

	// v2 is cataloged with a stale hash and a source worth keeping
	_, err := catalog.AddDatasetRecords(ctx, &core.DatasetRecord{
		Name: "v2", Path: v2, Hash: dataset.ComputeHash(nil), Source: "tickets", NumSamples: 9,
	})
	require.NoError(t, err)

	summary, err := NewAuditor(root, WithCatalog(catalog), WithResync(true)).Run(ctx)
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.True(t, summary.Results[0].Cataloged)
	assert.True(t, summary.Results[1].Cataloged)

	v1, err := catalog.GetDatasetRecord(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, v1.NumSamples)

	rec, err := catalog.GetDatasetRecord(ctx, "v2")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.NumSamples)
	assert.Equal(t, "tickets", rec.Source)
	assert.Equal(t, summary.Results[1].Report.ActualHash, rec.Hash)

	again, err := NewAuditor(root, WithCatalog(catalog), WithResync(true)).Run(ctx)
	require.NoError(t, err)
	for _, r := range again.Results {
		assert.False(t, r.Cataloged, "%s already in sync", r.Version)
	}
}

func TestAuditor_WithoutResyncLeavesCatalog(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeVersion(t, root, "v1", "a")
	catalog := newCatalog(t)

	summary, err := NewAuditor(root, WithCatalog(catalog)).Run(ctx)
	require.NoError(t, err)
	assert.False(t, summary.Results[0].Cataloged)

	records, err := catalog.ListDatasetRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAuditor_OrphanedRecords(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeVersion(t, root, "v1", "a")
	elsewhere := writeVersion(t, t.TempDir(), "custom", "b")
	hash := dataset.ComputeHash(nil)

	tests := []struct {
		name       string
		prune      bool
		wantPruned bool
		wantLeft   int
	}{
		{"report only", false, false, 3},
		{"prune", true, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := newCatalog(t)
			_, err := catalog.AddDatasetRecords(ctx,
				&core.DatasetRecord{Name: "v1", Hash: hash},
				&core.DatasetRecord{Name: "gone", Hash: hash, Path: filepath.Join(root, "gone")},
				&core.DatasetRecord{Name: "custom", Hash: hash, Path: elsewhere},
			)
			require.NoError(t, err)

			summary, err := NewAuditor(root, WithCatalog(catalog), WithPrune(tt.prune)).Run(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"gone"}, summary.Orphaned)
			assert.Equal(t, tt.wantPruned, summary.Pruned)

			records, err := catalog.ListDatasetRecords(ctx)
			require.NoError(t, err)
			assert.Len(t, records, tt.wantLeft)

			_, err = catalog.GetDatasetRecord(ctx, "custom")
			assert.NoError(t, err, "versions built outside the audited root are kept")
		})
	}
}

func TestAuditor_Errors(t *testing.T) {
	_, err := NewAuditor(filepath.Join(t.TempDir(), "absent")).Run(context.Background())
	assert.ErrorIs(t, err, core.ErrNotFound)

	root := t.TempDir()
	writeVersion(t, root, "v1", "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewAuditor(root).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
