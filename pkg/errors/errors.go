// Package errors provides structured error types for spdx2mermaid.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the viewer server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Conversion Errors
//
// The conversion engine fails with exactly three typed errors:
//   - [FormatError]: input is not a recognized serialization, or is malformed
//   - [ModelError]: input parsed but describes an inconsistent model
//   - [RenderError]: renderer configuration is invalid
//
// Each carries a [Code] through its Code method, so [GetCode] and [Is] work
// uniformly across typed errors and the generic [Error].
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "missing request body")
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	var fe *errors.FormatError
//	if stderrors.As(err, &fe) {
//	    fmt.Println("bad", fe.Format, "document")
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidModel  Code = "INVALID_MODEL"
	ErrCodeInvalidOption Code = "INVALID_OPTION"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// coder is implemented by typed errors that carry their own code.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// The outermost coded error in the chain decides.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// It understands *Error as well as the typed conversion errors.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
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
