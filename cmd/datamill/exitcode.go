package main

import (
	"errors"

	"github.com/poiesic/datamill/core"
)

// Process exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
	exitNotFound   = 3
	exitFormat     = 4
)

// exitCode classifies err. When a joined error matches several classes the
// first one in this order wins: validation, not found, format.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrUnsupportedFormat):
		return exitValidation
	case errors.Is(err, core.ErrNotFound):
		return exitNotFound
	case errors.Is(err, core.ErrFormat):
		return exitFormat
	default:
		return exitFailure
	}
}
