// Package errors defines the error taxonomy used throughout TrackStore.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes form a closed set. Every caller-visible failure is classified
// as exactly one of these.
const (
	// CodeInvalidInput marks malformed or out-of-range caller input,
	// rejected before any side effect is attempted.
	CodeInvalidInput = "InvalidInput"
	// CodeNotFound marks a requested resource that has no record, or whose
	// record's blob has vanished underneath it.
	CodeNotFound = "NotFound"
	// CodeConflict marks an attempt to create a record that already exists.
	CodeConflict = "Conflict"
	// CodeUnavailable marks an upstream or verification failure that
	// survived the retry budget.
	CodeUnavailable = "Unavailable"
)

// Error is a classified TrackStore error with a machine-readable code,
// human-readable message, HTTP status code, and optional per-field details.
type Error struct {
	// Code is one of the Code* constants above.
	Code string
	// Message is a human-readable description of the error.
	Message string
	// HTTPStatus is the HTTP status code to return.
	HTTPStatus int
	// Details holds field-level validation messages included in the
	// JSON error response.
	Details map[string]string
	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail returns a copy of the Error with the given field detail set.
func (e *Error) WithDetail(field, message string) *Error {
	cp := *e
	cp.Details = make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[field] = message
	return &cp
}

// InvalidInput constructs an invalid-input error.
func InvalidInput(format string, args ...any) *Error {
	return &Error{
		Code:       CodeInvalidInput,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: 400,
	}
}

// NotFound constructs a resource-absent error.
func NotFound(format string, args ...any) *Error {
	return &Error{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: 404,
	}
}

// Conflict constructs an already-exists error.
func Conflict(format string, args ...any) *Error {
	return &Error{
		Code:       CodeConflict,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: 409,
	}
}

// Unavailable constructs an infrastructure error wrapping the given cause.
// The cause may be nil.
func Unavailable(cause error, format string, args ...any) *Error {
	return &Error{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: 503,
		Err:        cause,
	}
}

// As reports whether err carries a classified *Error, assigning it to
// target when it does.
func As(err error, target **Error) bool {
	return stderrors.As(err, target)
}

// codeOf extracts the TrackStore error code from err, or "" if err carries
// no classification.
func codeOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsInvalidInput reports whether err is classified as invalid input.
func IsInvalidInput(err error) bool { return codeOf(err) == CodeInvalidInput }

// IsNotFound reports whether err is classified as not found.
func IsNotFound(err error) bool { return codeOf(err) == CodeNotFound }

// IsConflict reports whether err is classified as a conflict.
func IsConflict(err error) bool { return codeOf(err) == CodeConflict }

// IsUnavailable reports whether err is classified as an infrastructure failure.
func IsUnavailable(err error) bool { return codeOf(err) == CodeUnavailable }
