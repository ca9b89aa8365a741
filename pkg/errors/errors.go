package errors

import (
	"errors"
	"fmt"
)

// Process exit codes surfaced by the CLI.
const (
	ExitInternal      = 1
	ExitUsage         = 2
	ExitMissingColumn = 3
	ExitIO            = 4
)

// Error represents a typed domain error with exit-code awareness.
type Error struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	ExitCode int    `json:"exit_code"`
	Err      error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, exitCode int, message string) *Error {
	return &Error{Code: code, ExitCode: exitCode, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, exitCode int, message string) *Error {
	return &Error{Code: code, ExitCode: exitCode, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrValidation        = New("VALIDATION_ERROR", ExitUsage, "validation failed")
	ErrMissingColumn     = New("MISSING_COLUMN", ExitMissingColumn, "required column missing")
	ErrSourceUnreadable  = New("SOURCE_UNREADABLE", ExitIO, "schedule source could not be read")
	ErrOutputUnwritable  = New("OUTPUT_UNWRITABLE", ExitIO, "output could not be written")
	ErrUnsupportedFormat = New("UNSUPPORTED_FORMAT", ExitUsage, "unsupported format")
	ErrInternal          = New("INTERNAL_ERROR", ExitInternal, "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.ExitCode, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err carries the same code as target.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}
