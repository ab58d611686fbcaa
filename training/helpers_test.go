package training

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/dataset"
	"github.com/stretchr/testify/require"
)

// workspace is an artifact layout rooted in a temp dir.
type workspace struct {
	datasets    string
	models      string
	evaluations string
	registry    string
	root        string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	root := t.TempDir()
	return workspace{
		root:        root,
		datasets:    filepath.Join(root, "datasets"),
		models:      filepath.Join(root, "models"),
		evaluations: filepath.Join(root, "evaluations"),
		registry:    filepath.Join(root, "registry", "models.json"),
	}
}

// createDataset writes a dataset version with n samples and returns its hash.
func (w workspace) createDataset(t *testing.T, name string, n int) string {
	t.Helper()
	samples := make([]core.Sample, n)
	for i := range samples {
		samples[i] = core.Sample{
			ID:     core.SampleID("test", i),
			Input:  "question",
			Output: "answer",
			Source: "test",
		}
	}
	dir, err := dataset.CreateVersion(samples, name, nil, w.datasets)
	require.NoError(t, err)
	meta, err := dataset.ReadMetadata(dir)
	require.NoError(t, err)
	return meta.DatasetHash
}

// writeFile writes content under the workspace root and returns its path.
func (w workspace) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(w.root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const trainingYAML = `base_model: tiny-llm
dataset_version: v1
learning_rate: 0.001
epochs: 3
batch_size: 2
`
