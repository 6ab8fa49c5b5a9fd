// Package errors provides the structured error taxonomy shared by the
// catalog repositories, the meal generator and the boundary layers.
//
// Callers classify failures with the standard library:
//
//	if errors.Is(err, apperrors.ErrEmptySelection) {
//	    // the requested filters left nothing to choose from
//	}
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeLoad indicates the catalog source is missing, unreadable or undecodable.
	ErrCodeLoad ErrorCode = "LOAD_ERROR"
	// ErrCodeValidation indicates a decoded record is incomplete or inconsistent.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrCodeEmptySelection indicates a random draw from an empty sequence.
	ErrCodeEmptySelection ErrorCode = "EMPTY_SELECTION"
	// ErrCodeInvalidRequest indicates malformed caller input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Sentinels for errors.Is. They match any StructuredError with the same code.
var (
	ErrLoad           = &StructuredError{Code: ErrCodeLoad}
	ErrValidation     = &StructuredError{Code: ErrCodeValidation}
	ErrEmptySelection = &StructuredError{Code: ErrCodeEmptySelection}
	ErrInvalidRequest = &StructuredError{Code: ErrCodeInvalidRequest}
)

// StructuredError carries an error code for programmatic handling, a
// human-readable message, the underlying cause and optional debug context.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a StructuredError with the same code.
func (e *StructuredError) Is(target error) bool {
	t, ok := target.(*StructuredError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf returns the code of the first StructuredError in err's chain,
// or ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}
