package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/internal/fsutil"
)

// Artifact file names.
const (
	ModelMetadataFile = "metadata.json"
	EvaluationFile    = "evaluation.json"
)

// Default artifact locations.
const (
	DefaultModelsDir      = "artifacts/models"
	DefaultEvaluationsDir = "artifacts/evaluations"
)

// Evaluator scores model versions found under a models directory.
type Evaluator struct {
	modelsDir string
	outputDir string
	logger    *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithModelsDir sets where model metadata is read from.
func WithModelsDir(dir string) Option {
	return func(e *Evaluator) {
		if dir != "" {
			e.modelsDir = dir
		}
	}
}

// WithOutputDir sets where evaluations are written.
func WithOutputDir(dir string) Option {
	return func(e *Evaluator) {
		if dir != "" {
			e.outputDir = dir
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		modelsDir: DefaultModelsDir,
		outputDir: DefaultEvaluationsDir,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OutputDir returns the directory evaluations are written under.
func (e *Evaluator) OutputDir() string {
	return e.outputDir
}

// Evaluate scores modelVersion and writes its evaluation.json. It returns
// the evaluation directory.
func (e *Evaluator) Evaluate(ctx context.Context, modelVersion string) (string, error) {
	if err := core.ValidateVersionName(modelVersion); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	meta, err := LoadModelMetadata(e.modelsDir, modelVersion)
	if err != nil {
		return "", err
	}

	result := core.Evaluation{
		ModelVersion:   modelVersion,
		DatasetVersion: meta.DatasetVersion,
		Metrics:        SimulateMetrics(modelVersion, meta.DatasetVersion),
	}

	dir := filepath.Join(e.outputDir, modelVersion)
	if err := fsutil.WriteJSONAtomic(filepath.Join(dir, EvaluationFile), &result, 0o644); err != nil {
		return "", fmt.Errorf("failed to write evaluation: %w", err)
	}

	e.logger.Info("evaluated model",
		"model", modelVersion,
		"dataset", meta.DatasetVersion,
		"quality_score", result.Metrics.QualityScore,
		"latency_ms", result.Metrics.LatencyMs,
		"cost_per_1k_tokens", result.Metrics.CostPer1kTokens)
	return dir, nil
}

// LoadModelMetadata reads <modelsDir>/<modelVersion>/metadata.json.
func LoadModelMetadata(modelsDir, modelVersion string) (*core.ModelMetadata, error) {
	path := filepath.Join(modelsDir, modelVersion, ModelMetadataFile)
	var meta core.ModelMetadata
	if err := readJSON(path, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadEvaluation reads evaluation.json from an evaluation directory.
func LoadEvaluation(dir string) (*core.Evaluation, error) {
	var result core.Evaluation
	if err := readJSON(filepath.Join(dir, EvaluationFile), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", core.ErrNotFound, path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrFormat, path, err)
	}
	return nil
}
