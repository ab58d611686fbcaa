package audit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/datamill/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDirs(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0o755))
	}
}

func TestVersionIterator_Versions(t *testing.T) {
	root := t.TempDir()
	makeDirs(t, root, "v2", "v1", ".v3.staging-123", ".v1.old-9", "v10")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	names, err := NewVersionIterator(root, 0).Versions()
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v10", "v2"}, names)
}

func TestVersionIterator_ForEachBatches(t *testing.T) {
	root := t.TempDir()
	makeDirs(t, root, "a", "b", "c", "d", "e")

	var batches [][]string
	err := NewVersionIterator(root, 2).ForEach(context.Background(), func(batch []string) error {
		batches = append(batches, batch)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, batches)
}

func TestVersionIterator_Empty(t *testing.T) {
	calls := 0
	err := NewVersionIterator(t.TempDir(), 10).ForEach(context.Background(), func([]string) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestVersionIterator_StopsOnError(t *testing.T) {
	root := t.TempDir()
	makeDirs(t, root, "a", "b", "c")
	boom := errors.New("boom")

	calls := 0
	err := NewVersionIterator(root, 1).ForEach(context.Background(), func([]string) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestVersionIterator_Canceled(t *testing.T) {
	root := t.TempDir()
	makeDirs(t, root, "a", "b", "c")
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := NewVersionIterator(root, 1).ForEach(ctx, func([]string) error {
		calls++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestVersionIterator_MissingRoot(t *testing.T) {
	_, err := NewVersionIterator(filepath.Join(t.TempDir(), "absent"), 1).Versions()
	assert.ErrorIs(t, err, core.ErrNotFound)
}
