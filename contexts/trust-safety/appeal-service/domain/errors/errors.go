package errors

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid appeal request")
	ErrAppealNotFound         = errors.New("appeal not found")
	ErrViolationNotFound      = errors.New("violation not found")
	ErrNotViolationOwner      = errors.New("violation does not belong to the appellant")
	ErrAppealWindowClosed     = errors.New("appeal window has closed for this violation")
	ErrAppealOutstanding      = errors.New("an appeal is already outstanding for this violation")
	ErrInvalidTransition      = errors.New("invalid appeal status transition")
	ErrAppealAlreadyResolved  = errors.New("appeal is already resolved")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyConflict    = errors.New("idempotency key reused with a different request")
	ErrDependencyUnavailable  = errors.New("dependency unavailable")
)
