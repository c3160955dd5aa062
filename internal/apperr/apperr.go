// Package apperr provides coded domain errors shared across layers.
package apperr

import "errors"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeValidation marks bad or missing client input.
	CodeValidation Code = "VALIDATION"

	// CodeEmailTaken marks a duplicate-email registration attempt.
	CodeEmailTaken Code = "EMAIL_TAKEN"

	// CodeUnauthorized marks a missing, invalid, or expired credential.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeNotFound marks a record that is absent or owned by another
	// account; the two cases are deliberately indistinguishable.
	CodeNotFound Code = "NOT_FOUND"
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code    Code              // machine-readable error code
	Message string            // internal message (for logs)
	Fields  map[string]string // per-field messages for validation errors
	Cause   error             // wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Validation creates a validation error carrying per-field messages.
func Validation(fields map[string]string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: "invalid input",
		Fields:  fields,
	}
}

// CodeOf extracts the domain code from err, or CodeUnknown when err is
// not a domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
