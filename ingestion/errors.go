package ingestion

import "errors"

var (
	// ErrDuplicateTarget is returned by BuildAll when two configs write the
	// same version directory.
	ErrDuplicateTarget = errors.New("duplicate build target")

	// ErrPipelineReleased is returned when a released pipeline is used.
	ErrPipelineReleased = errors.New("pipeline released")
)
