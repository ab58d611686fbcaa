package training

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/evaluation"
)

// Pipeline chains training, registration, and evaluation of one model.
type Pipeline struct {
	trainer   *Trainer
	registry  *Registry
	evaluator *evaluation.Evaluator
	logger    *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets a custom logger.
// Default is slog.Default().
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a training pipeline. All three collaborators are
// required.
func NewPipeline(trainer *Trainer, registry *Registry, evaluator *evaluation.Evaluator, opts ...PipelineOption) (*Pipeline, error) {
	if trainer == nil {
		return nil, ErrTrainerRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if evaluator == nil {
		return nil, ErrEvaluatorRequired
	}

	p := &Pipeline{
		trainer:   trainer,
		registry:  registry,
		evaluator: evaluator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run trains modelVersion from the config at configPath, registers the
// resulting model, evaluates it, and returns the evaluation record.
// A failure at any step stops the run; earlier artifacts are left in place.
func (p *Pipeline) Run(ctx context.Context, configPath, modelVersion string) (*core.Evaluation, error) {
	if _, err := p.trainer.Train(ctx, configPath, modelVersion); err != nil {
		return nil, err
	}

	meta, err := evaluation.LoadModelMetadata(p.trainer.ModelsDir(), modelVersion)
	if err != nil {
		return nil, err
	}
	if err := p.registry.Register(meta); err != nil {
		return nil, err
	}

	evalDir, err := p.evaluator.Evaluate(ctx, modelVersion)
	if err != nil {
		return nil, err
	}
	result, err := evaluation.LoadEvaluation(evalDir)
	if err != nil {
		return nil, err
	}

	p.logger.Info("training pipeline finished",
		"model", modelVersion,
		"dataset", meta.DatasetVersion,
		"quality_score", result.Metrics.QualityScore,
		"evaluation", filepath.Join(evalDir, evaluation.EvaluationFile))
	return result, nil
}
