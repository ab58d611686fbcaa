package audit

import "errors"

var (
	// ErrAuditFailed is returned by Summary.Err when any version failed.
	ErrAuditFailed = errors.New("dataset audit failed")
)
