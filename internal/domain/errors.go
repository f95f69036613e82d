package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing document.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate submission.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidFormula signals a chemical formula that cannot be parsed.
	ErrInvalidFormula = errors.New("invalid formula")
	// ErrInvalidQuery signals malformed or unsupported query parameters.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrValidation signals a document that does not match its schema.
	ErrValidation = errors.New("validation failed")
	// ErrSearchDisabled signals a resource without a default search route.
	ErrSearchDisabled = errors.New("search disabled")
	// ErrUnsupported signals criteria the backing store cannot evaluate.
	ErrUnsupported = errors.New("unsupported criteria")
	// ErrObjectStoreUnavailable signals an object route without configured storage.
	ErrObjectStoreUnavailable = errors.New("object storage unavailable")
)

// NotFoundError wraps ErrNotFound with the key that was looked up.
type NotFoundError struct {
	Field string
	Value string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Item with %s = %s not found", e.Field, e.Value)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound creates a not-found error for a key lookup.
func NewNotFound(field, value string) error {
	return &NotFoundError{Field: field, Value: value}
}

// QueryError wraps ErrInvalidQuery with the offending parameter.
type QueryError struct {
	Param  string
	Reason string
}

func (e *QueryError) Error() string {
	if e.Param == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Param, e.Reason)
}

func (e *QueryError) Unwrap() error { return ErrInvalidQuery }

// NewQueryError creates an invalid-query error for a parameter.
func NewQueryError(param, format string, args ...any) error {
	return &QueryError{Param: param, Reason: fmt.Sprintf(format, args...)}
}
