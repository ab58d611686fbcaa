package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/dataset"
	"github.com/poiesic/datamill/evaluation"
	"github.com/poiesic/datamill/internal/fsutil"
)

// DefaultDatasetsDir is where the trainer looks up dataset versions.
const DefaultDatasetsDir = "artifacts/datasets"

// Trainer runs simulated training jobs.
type Trainer struct {
	datasetsDir string
	modelsDir   string
	logger      *slog.Logger
	now         func() time.Time
	newRunID    func() string
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer)

// WithDatasetsDir sets where dataset versions are read from.
func WithDatasetsDir(dir string) TrainerOption {
	return func(t *Trainer) {
		if dir != "" {
			t.datasetsDir = dir
		}
	}
}

// WithModelsDir sets where model artifacts are written.
func WithModelsDir(dir string) TrainerOption {
	return func(t *Trainer) {
		if dir != "" {
			t.modelsDir = dir
		}
	}
}

// WithTrainerLogger sets a custom logger.
// Default is slog.Default().
func WithTrainerLogger(logger *slog.Logger) TrainerOption {
	return func(t *Trainer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithClock overrides the time source used for trained_at.
func WithClock(now func() time.Time) TrainerOption {
	return func(t *Trainer) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTrainer creates a Trainer.
func NewTrainer(opts ...TrainerOption) *Trainer {
	t := &Trainer{
		datasetsDir: DefaultDatasetsDir,
		modelsDir:   evaluation.DefaultModelsDir,
		logger:      slog.Default(),
		now:         time.Now,
		newRunID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ModelsDir returns the directory model artifacts are written under.
func (t *Trainer) ModelsDir() string {
	return t.modelsDir
}

// Train loads the training config at configPath, simulates a run over the
// referenced dataset version, and writes <models_dir>/<modelVersion>/metadata.json.
// It returns the model directory.
func (t *Trainer) Train(ctx context.Context, configPath, modelVersion string) (string, error) {
	if err := core.ValidateVersionName(modelVersion); err != nil {
		return "", err
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return "", err
	}

	datasetDir := filepath.Join(t.datasetsDir, cfg.DatasetVersion)
	info, err := os.Stat(datasetDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: dataset version %s", core.ErrNotFound, datasetDir)
	}

	numSamples, err := dataset.CountSamples(datasetDir)
	if err != nil {
		return "", err
	}

	// Datasets without metadata.json still train; the hash stays empty.
	var datasetHash string
	meta, err := dataset.ReadMetadata(datasetDir)
	switch {
	case err == nil:
		datasetHash = meta.DatasetHash
	case errors.Is(err, core.ErrNotFound):
	default:
		return "", err
	}

	runID := t.newRunID()
	logger := t.logger.With("run_id", runID, "model", modelVersion, "dataset", cfg.DatasetVersion)
	if err := t.simulate(ctx, logger, cfg, numSamples); err != nil {
		return "", err
	}

	model := core.ModelMetadata{
		ModelVersion:       modelVersion,
		BaseModel:          cfg.BaseModel,
		DatasetVersion:     cfg.DatasetVersion,
		DatasetHash:        datasetHash,
		TrainingConfig:     *cfg,
		NumTrainingSamples: numSamples,
		RunID:              runID,
		TrainedAt:          t.now().UTC(),
	}

	dir := filepath.Join(t.modelsDir, modelVersion)
	if err := fsutil.WriteJSONAtomic(filepath.Join(dir, evaluation.ModelMetadataFile), &model, 0o644); err != nil {
		return "", fmt.Errorf("failed to write model metadata: %w", err)
	}
	logger.Info("wrote model artifact", "dir", dir, "samples", numSamples)
	return dir, nil
}

// simulate stands in for a training loop; it only reports the step count.
func (t *Trainer) simulate(ctx context.Context, logger *slog.Logger, cfg *core.TrainingConfig, numSamples int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stepsPerEpoch := numSamples / max(cfg.BatchSize, 1)
	logger.Info("simulated training",
		"base_model", cfg.BaseModel,
		"learning_rate", cfg.LearningRate,
		"epochs", cfg.Epochs,
		"batch_size", cfg.BatchSize,
		"steps", cfg.Epochs*stepsPerEpoch)
	return nil
}
