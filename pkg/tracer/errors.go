package tracer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery is returned for queries rejected before tracing.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrCandidateLimit is returned when a query would enumerate more
	// candidate sequences than WithMaxCandidates allows.
	ErrCandidateLimit = errors.New("candidate limit exceeded")
)

// QueryError names the offending query parameter.
type QueryError struct {
	Field string
	Value any
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%v: %s = %v", ErrInvalidQuery, e.Field, e.Value)
}

// Unwrap returns ErrInvalidQuery.
func (e *QueryError) Unwrap() error {
	return ErrInvalidQuery
}
