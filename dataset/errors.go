package dataset

import "errors"

var (
	// ErrHashMismatch is returned by Verify callers that require a clean report.
	ErrHashMismatch = errors.New("dataset hash mismatch")
)
