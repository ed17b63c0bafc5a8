package errors

import "errors"

var (
	ErrInvalidRequest        = errors.New("invalid reputation request")
	ErrReputationNotFound    = errors.New("user reputation not found")
	ErrViolationNotFound     = errors.New("user violation not found")
	ErrSuspensionNotFound    = errors.New("suspension not found")
	ErrPermanentHasEndDate   = errors.New("permanent suspensions cannot carry an end date")
	ErrTemporaryNeedsEndDate = errors.New("temporary suspensions require an end date")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
