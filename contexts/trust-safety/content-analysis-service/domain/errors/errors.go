package errors

import "errors"

var (
	ErrInvalidRequest        = errors.New("invalid analysis request")
	ErrEmptyContent          = errors.New("whisper content is empty")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
