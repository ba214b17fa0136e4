package errors

import "fmt"

// FormatUnknown is the Format of a [FormatError] raised when no supported
// serialization matched the input.
const FormatUnknown = "unknown"

// FormatError reports input that is not a recognized SPDX serialization,
// or that was recognized but could not be parsed.
type FormatError struct {
	Format string // detected or attempted format, or FormatUnknown
	Cause  error  // underlying parser error (optional)
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Format == FormatUnknown || e.Format == "" {
		if e.Cause != nil {
			return fmt.Sprintf("unrecognized SPDX serialization: %v", e.Cause)
		}
		return "unrecognized SPDX serialization"
	}
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s document: %v", e.Format, e.Cause)
	}
	return fmt.Sprintf("invalid %s document", e.Format)
}

// Unwrap returns the underlying parser error.
func (e *FormatError) Unwrap() error { return e.Cause }

// Code returns ErrCodeInvalidFormat.
func (e *FormatError) Code() Code { return ErrCodeInvalidFormat }

// ModelError reports a syntactically valid document that describes an
// inconsistent model, such as two elements sharing an identifier.
type ModelError struct {
	ID     string // offending SPDX identifier
	Reason string // short description, e.g. "duplicate identifier"
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.ID)
}

// Code returns ErrCodeInvalidModel.
func (e *ModelError) Code() Code { return ErrCodeInvalidModel }

// RenderError reports an invalid renderer option.
type RenderError struct {
	Option string // option name, e.g. "max_packages"
	Value  any    // offending value
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Option, e.Value)
}

// Code returns ErrCodeInvalidOption.
func (e *RenderError) Code() Code { return ErrCodeInvalidOption }
