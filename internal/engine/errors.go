package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is an operation the engine refused or could not complete.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// SessionID identifies the affected session.
	SessionID string

	// Operation is the operation name as requested.
	Operation string

	// Details contains additional context. Never holds private values.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownOperation means the contract has no such operation.
	ErrCodeUnknownOperation RuntimeErrorCode = "UNKNOWN_OPERATION"

	// ErrCodeInvalidArgument means the args do not match the operation signature.
	ErrCodeInvalidArgument RuntimeErrorCode = "INVALID_ARGUMENT"

	// ErrCodeRangeViolation means the transition would leave the counter range.
	// The state is unchanged and the attempt is journaled.
	ErrCodeRangeViolation RuntimeErrorCode = "RANGE_VIOLATION"

	// ErrCodeJournal means the transition applied but could not be written.
	ErrCodeJournal RuntimeErrorCode = "JOURNAL_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.SessionID != "" && e.Operation != "" {
		return fmt.Sprintf("%s: %s (session=%s, op=%s)", e.Code, e.Message, e.SessionID, e.Operation)
	}
	if e.Operation != "" {
		return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Operation)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func isCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsRangeViolation reports whether err is a RANGE_VIOLATION runtime error.
func IsRangeViolation(err error) bool {
	return isCode(err, ErrCodeRangeViolation)
}

// IsInvalidArgument reports whether err is an INVALID_ARGUMENT runtime error.
func IsInvalidArgument(err error) bool {
	return isCode(err, ErrCodeInvalidArgument)
}

// IsUnknownOperation reports whether err is an UNKNOWN_OPERATION runtime error.
func IsUnknownOperation(err error) bool {
	return isCode(err, ErrCodeUnknownOperation)
}
