// Package errors provides structured error types for imgfilter.
//
// Every failure the tool reports falls into one of three groups:
//   - configuration errors: bad command-line arguments or recipe entries,
//     detected before any image is read (INVALID_*)
//   - format errors: the input is not a supported bitmap (UNSUPPORTED_FORMAT)
//   - precondition errors: a filter parameter does not fit the image
//     (PRECONDITION)
//
// All of them abort the run; nothing is written to the output path.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidParameter, "threshold must be between 0.0 and 1.0")
//	if errors.Is(err, errors.ErrCodeInvalidParameter) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeUnsupportedFormat, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFilter    Code = "INVALID_FILTER"
	ErrCodeInvalidParameter Code = "INVALID_PARAMETER"
	ErrCodeInvalidPath      Code = "INVALID_PATH"
	ErrCodeInvalidRecipe    Code = "INVALID_RECIPE"

	// Format errors
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// Precondition errors
	ErrCodePrecondition Code = "PRECONDITION"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsConfig reports whether err is a configuration error, i.e. one that is
// detected before any pixel is touched.
func IsConfig(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFilter, ErrCodeInvalidParameter,
		ErrCodeInvalidPath, ErrCodeInvalidRecipe:
		return true
	}
	return false
}
