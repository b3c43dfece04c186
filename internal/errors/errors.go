// Package errors defines structured error kinds for the write engine and its callers.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode defines the specific failure kinds surfaced by the store.
type ErrorCode string

const (
	// ErrIntentInvalid is returned when a write intent is malformed
	ErrIntentInvalid ErrorCode = "INTENT_INVALID"
	// ErrResidue is returned when leftover .tmp files block a new transaction
	ErrResidue ErrorCode = "RESIDUE"
	// ErrScopeViolation is returned when a folder auto-create is not permitted
	ErrScopeViolation ErrorCode = "SCOPE_VIOLATION"
	// ErrNotFound is returned when an operation targets an unknown record
	ErrNotFound ErrorCode = "NOT_FOUND"
	// ErrSchemaViolation is returned when a staged record fails validation
	ErrSchemaViolation ErrorCode = "SCHEMA_VIOLATION"
	// ErrIOFault is returned when an underlying file-system operation fails
	ErrIOFault ErrorCode = "IO_FAULT"
	// ErrDriftWarning names on-disk divergence from the manifest; boot and
	// validate report drift as data, not as an error of this kind
	ErrDriftWarning ErrorCode = "DRIFT_WARNING"
	// ErrLifecycleDenied is returned when a state transition or delete gate fails
	ErrLifecycleDenied ErrorCode = "LIFECYCLE_DENIED"
)

// BrainError is a concrete error type with a kind, message, and optional
// per-field reasons.
type BrainError struct {
	code       ErrorCode
	message    string
	reasons    []string
	wrappedErr error
}

// New creates a new BrainError with the given code and message.
func New(code ErrorCode, message string) *BrainError {
	return &BrainError{code: code, message: message}
}

// WithReasons appends per-field reasons to the error.
func (e *BrainError) WithReasons(reasons ...string) *BrainError {
	e.reasons = append(e.reasons, reasons...)
	return e
}

// Wrap wraps an underlying error.
func (e *BrainError) Wrap(err error) *BrainError {
	e.wrappedErr = err
	return e
}

// Error implements the error interface.
func (e *BrainError) Error() string {
	msg := e.message
	if len(e.reasons) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.reasons, "; "))
	}
	if e.wrappedErr != nil {
		return fmt.Sprintf("%s: %v", msg, e.wrappedErr)
	}
	return msg
}

// Code returns the error kind.
func (e *BrainError) Code() ErrorCode {
	return e.code
}

// Reasons returns the per-field reasons, if any.
func (e *BrainError) Reasons() []string {
	return e.reasons
}

// Unwrap returns the wrapped error if any.
func (e *BrainError) Unwrap() error {
	return e.wrappedErr
}

// CodeOf extracts the ErrorCode from err, or empty string if err is not a
// BrainError.
func CodeOf(err error) ErrorCode {
	var be *BrainError
	if errors.As(err, &be) {
		return be.code
	}
	return ""
}

// ReasonsOf extracts the per-field reasons from err, or nil.
func ReasonsOf(err error) []string {
	var be *BrainError
	if errors.As(err, &be) {
		return be.reasons
	}
	return nil
}

// Predefined error constructors for common cases

// IntentInvalid creates an error for a malformed write intent.
func IntentInvalid(reasons ...string) *BrainError {
	return New(ErrIntentInvalid, "intent validation failed").WithReasons(reasons...)
}

// Residue creates an error for leftover temporary files from a prior transaction.
func Residue(paths ...string) *BrainError {
	return New(ErrResidue, "unfinished transaction residue in index folder").WithReasons(paths...)
}

// ScopeViolation creates an error for a folder auto-create outside the permitted scope.
func ScopeViolation(message string) *BrainError {
	return New(ErrScopeViolation, message)
}

// NotFound creates an error for an unknown record.
func NotFound(recordID string) *BrainError {
	return New(ErrNotFound, fmt.Sprintf("record %s not found", recordID))
}

// SchemaViolation creates an error for a record failing pre-commit validation.
func SchemaViolation(reasons ...string) *BrainError {
	return New(ErrSchemaViolation, "staged state failed validation").WithReasons(reasons...)
}

// IOFault creates an error wrapping a file-system failure.
func IOFault(operation string, err error) *BrainError {
	return New(ErrIOFault, operation).Wrap(err)
}

// LifecycleDenied creates an error for a rejected state transition or delete gate.
func LifecycleDenied(reasons ...string) *BrainError {
	return New(ErrLifecycleDenied, "lifecycle gate denied the operation").WithReasons(reasons...)
}
