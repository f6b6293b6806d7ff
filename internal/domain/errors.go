package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// todo does not exist in the store.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails a field
// constraint or a request is otherwise unacceptable.
// Every *ValidationError unwraps to it, so callers can test with errors.Is.
var ErrValidation = errors.New("validation error")

// ValidationKind is the machine-readable category of a ValidationError.
type ValidationKind string

const (
	KindInvalidQuery  ValidationKind = "invalid_query_parameter"
	KindEmptyUpdate   ValidationKind = "empty_update"
	KindUnknownField  ValidationKind = "unknown_field"
	KindInvalidField  ValidationKind = "invalid_field"
	KindMalformedBody ValidationKind = "malformed_body"
)

// ValidationError describes rejected input. Field is empty when the problem is
// not attributable to a single field (e.g. an empty update).
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

// NewValidationError builds a *ValidationError with a formatted message.
func NewValidationError(kind ValidationKind, field, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return "validation error: " + e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// AsValidationError extracts the *ValidationError from err's chain.
// It returns false for plain ErrValidation sentinels and unrelated errors.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
