package study

import "fmt"

// ValidationError reports malformed or out-of-bounds caller input. The
// message is safe to return to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ParseError reports upstream text that could not be coerced into the
// expected structure even after repair. The raw upstream text is never
// embedded here; callers log it separately and return a generic message.
type ParseError struct {
	Operation Operation
	Cause     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("study: failed to parse %s response: %v", e.Operation, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
