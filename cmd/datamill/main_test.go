package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"datamill"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func findFlag(flags []cli.Flag, name string) cli.Flag {
	for _, f := range flags {
		for _, n := range f.Names() {
			if n == name {
				return f
			}
		}
	}
	return nil
}

func TestAppFlags(t *testing.T) {
	app := newApp()

	t.Run("log-level defaults to info", func(t *testing.T) {
		f, ok := findFlag(app.Flags, "log-level").(*cli.StringFlag)
		require.True(t, ok)
		assert.Equal(t, "info", f.Value)
	})

	t.Run("train requires config and model version", func(t *testing.T) {
		var train *cli.Command
		for _, cmd := range app.Commands {
			if cmd.Name == "train" {
				train = cmd
			}
		}
		require.NotNil(t, train)
		for _, name := range []string{"config", "model-version"} {
			f, ok := findFlag(train.Flags, name).(*cli.StringFlag)
			require.True(t, ok, name)
			assert.True(t, f.Required, name)
			assert.Empty(t, f.EnvVars, name)
		}
	})

	t.Run("missing required flag", func(t *testing.T) {
		_, err := runApp(t, "--artifacts", t.TempDir(), "train", "--model-version", "m1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config")
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, err := runApp(t, "--log-level", "loud", "models", "list")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"validation", fmt.Errorf("%w: bad", core.ErrValidation), exitValidation},
		{"unsupported format", fmt.Errorf("%w: .xml", core.ErrUnsupportedFormat), exitValidation},
		{"not found", fmt.Errorf("%w: x", core.ErrNotFound), exitNotFound},
		{"format", fmt.Errorf("%w: x", core.ErrFormat), exitFormat},
		{"hash mismatch", dataset.ErrHashMismatch, exitFailure},
		{"other", errors.New("boom"), exitFailure},
		{"joined prefers validation", errors.Join(core.ErrFormat, core.ErrValidation), exitValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestEndToEnd(t *testing.T) {
	root := t.TempDir()
	artifacts := filepath.Join(root, "artifacts")
	input := writeFile(t, filepath.Join(root, "raw", "tickets.json"),
		`[{"input": "Hello", "output": "Hi there"}, {"input": "Bye", "output": "Goodbye"}]`)
	buildConfig := writeFile(t, filepath.Join(root, "build.yaml"),
		"input_path: "+input+"\nsource: test\nversion_name: v1\n")
	trainConfig := writeFile(t, filepath.Join(root, "train.yaml"),
		"base_model: tiny-llm\ndataset_version: v1\nlearning_rate: 0.001\nepochs: 2\nbatch_size: 1\n")
	const hash = "92f18ca44a1421e4e776eb4bc1169750e05f7c30fa5abd0cacfce7de4958a564"

	out, err := runApp(t, "--artifacts", artifacts, "dataset", "build", "--workers", "2", buildConfig)
	require.NoError(t, err)
	assert.Contains(t, out, "built v1")
	assert.Contains(t, out, hash)

	out, err = runApp(t, "--artifacts", artifacts, "dataset", "verify", "v1")
	require.NoError(t, err)
	assert.Contains(t, out, `"hash_matches": true`)

	out, err = runApp(t, "--artifacts", artifacts, "dataset", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "v1")
	assert.Contains(t, out, hash[:12])

	out, err = runApp(t, "--artifacts", artifacts, "dataset", "list", "--hash", hash)
	require.NoError(t, err)
	assert.Contains(t, out, "v1")

	out, err = runApp(t, "--artifacts", artifacts, "dataset", "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "ok v1")

	out, err = runApp(t, "--artifacts", artifacts, "run", "--config", trainConfig, "--model-version", "m1")
	require.NoError(t, err)
	assert.Contains(t, out, `"quality_score": 0.5672`)
	assert.Contains(t, out, `"latency_ms": 59`)

	out, err = runApp(t, "--artifacts", artifacts, "evaluate", "-m", "m1")
	require.NoError(t, err)
	assert.Contains(t, out, `"cost_per_1k_tokens": 0.0162`)

	out, err = runApp(t, "--artifacts", artifacts, "models", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "m1")
	assert.Contains(t, out, "tiny-llm")

	out, err = runApp(t, "--artifacts", artifacts, "models", "show", "m1")
	require.NoError(t, err)
	assert.Contains(t, out, `"num_training_samples": 2`)

	out, err = runApp(t, "--artifacts", artifacts, "train", "-c", trainConfig, "-m", "m2")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(artifacts, "models", "m2"))
}

func TestCommandErrors(t *testing.T) {
	root := t.TempDir()
	artifacts := filepath.Join(root, "artifacts")

	tampered := filepath.Join(artifacts, "datasets", "v1")
	_, err := dataset.CreateVersion([]core.Sample{{ID: "t_0", Input: "a", Output: "b", Source: "t"}}, "v1", nil, filepath.Dir(tampered))
	require.NoError(t, err)
	writeFile(t, filepath.Join(tampered, dataset.DataFile), "{}\n{}\n")

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"build without configs", []string{"dataset", "build"}, exitValidation},
		{"build missing config", []string{"dataset", "build", filepath.Join(root, "absent.yaml")}, exitNotFound},
		{"verify bad name", []string{"dataset", "verify", "../v1"}, exitValidation},
		{"verify missing version", []string{"dataset", "verify", "v9"}, exitNotFound},
		{"verify tampered version", []string{"dataset", "verify", "v1"}, exitFailure},
		{"audit tampered version", []string{"dataset", "audit"}, exitFailure},
		{"show unknown model", []string{"models", "show", "m9"}, exitNotFound},
		{"evaluate unknown model", []string{"evaluate", "-m", "m9"}, exitNotFound},
		{"train missing config", []string{"train", "-c", filepath.Join(root, "absent.yaml"), "-m", "m1"}, exitNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, append([]string{"--artifacts", artifacts}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, exitCode(err), "err = %v", err)
		})
	}
}
