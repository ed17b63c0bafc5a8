package errors

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid report request")
	ErrReporterBanned         = errors.New("banned users cannot author reports")
	ErrSelfReport             = errors.New("users cannot report their own content")
	ErrReportNotFound         = errors.New("report not found")
	ErrInvalidTransition      = errors.New("invalid report status transition")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyConflict    = errors.New("idempotency key reused with a different request")
	ErrDependencyUnavailable  = errors.New("dependency unavailable")
)
