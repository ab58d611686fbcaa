package training

import "errors"

var (
	// ErrTrainerRequired is returned when a trainer is not provided.
	ErrTrainerRequired = errors.New("trainer required")

	// ErrRegistryRequired is returned when a registry is not provided.
	ErrRegistryRequired = errors.New("registry required")

	// ErrEvaluatorRequired is returned when an evaluator is not provided.
	ErrEvaluatorRequired = errors.New("evaluator required")
)
