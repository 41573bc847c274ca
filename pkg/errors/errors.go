// Package errors provides structured error types for behave.
//
// Errors carry a machine-readable code so that callers (the editor UI, the CLI)
// can tell the failure categories of the graph model apart:
//   - Validation: a duplicate portal name or exposed proxy name
//   - Referential: a link endpoint or sub-graph reference that does not resolve
//   - Structural: an illegal link pair or a cyclic sub-graph reference
//   - External: a script record could not be provisioned by the store
//   - State: the container is saving, a handle is stale, or layout is dirty
//
// None of these are fatal. Every operation that fails with one of these codes
// leaves the graph exactly as it was before the call.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicatePortal, "portal %q already exists", name)
//	if errors.Is(err, errors.ErrCodeDuplicatePortal) {
//	    // reject the edit in the property grid
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeScriptProvision, origErr, "provision script for %s", nodeID)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeDuplicatePortal Code = "DUPLICATE_PORTAL"
	ErrCodeDuplicateProxy  Code = "DUPLICATE_PROXY"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"

	// Referential errors
	ErrCodeNotFound            Code = "NOT_FOUND"
	ErrCodeUnresolvedReference Code = "UNRESOLVED_REFERENCE"

	// Structural errors
	ErrCodeCyclicDependency Code = "CYCLIC_DEPENDENCY"
	ErrCodeIncompatibleLink Code = "INCOMPATIBLE_LINK"

	// External errors
	ErrCodeScriptProvision Code = "SCRIPT_PROVISION"
	ErrCodeStorage         Code = "STORAGE_ERROR"

	// State errors
	ErrCodeContainerBusy Code = "CONTAINER_BUSY"
	ErrCodeStaleHandle   Code = "STALE_HANDLE"
	ErrCodeDirtyLayout   Code = "DIRTY_LAYOUT"

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
