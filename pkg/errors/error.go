// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid fields, missing data, lifecycle violations
//   - Data/Resource errors (200-299): Trades or users not found, query failures
//   - Auth errors (400-499): Credential, token, and registration failures
//   - Storage errors (500-599): Repository persistence failures
//   - Import errors (600-699): CSV import row and read failures
//   - Market data errors (700-799): Quote provider failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeTradeNotFound, "trade not found")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeTradeNotFound, "trade %s not found", id)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeTradeNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsValidation reports whether the error carries a validation code (100-199).
func IsValidation(err error) bool {
	code := GetCode(err)

	return code >= 100 && code < 200
}

// IsNotFound reports whether the error carries a not-found code (200-299).
func IsNotFound(err error) bool {
	code := GetCode(err)

	return code >= 200 && code < 300
}

// FieldViolation describes a single invalid input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Code    ErrorCode
	Message string `json:"message"`
}

// ValidationError represents a recoverable bad-input error listing every
// offending field. The caller is expected to correct the fields and retry.
type ValidationError struct {
	Violations []FieldViolation
}

// NewValidationError creates a ValidationError from a list of field violations.
func NewValidationError(violations ...FieldViolation) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Add appends a field violation and returns the receiver for chaining.
func (e *ValidationError) Add(field string, code ErrorCode, message string) *ValidationError {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Code: code, Message: message})

	return e
}

// Empty reports whether no violations were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Violations) == 0
}

// Fields returns the names of all offending fields, in recording order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}

	return fields
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}

	msg := "validation failed:"
	for _, v := range e.Violations {
		msg += fmt.Sprintf(" %s: %s;", v.Field, v.Message)
	}

	return msg[:len(msg)-1]
}

// IsValidationError checks if an error is a *ValidationError.
// It uses errors.As to check the error chain.
func IsValidationError(err error) bool {
	var validationErr *ValidationError

	return errors.As(err, &validationErr)
}

// AsValidationError extracts a *ValidationError from the error chain, or nil.
func AsValidationError(err error) *ValidationError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}

	return nil
}
