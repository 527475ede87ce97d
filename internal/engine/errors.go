package engine

import (
	"errors"
	"fmt"
)

// GenerationError represents a failed generation request.
//
// A request that fails produces no batch. Statements are never returned
// for a class whose resolution failed.
type GenerationError struct {
	// Code identifies the error category.
	Code GenerationErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the aborted run, when one was assigned.
	RunID string

	// Class is the class IRI of the request.
	Class string

	// Err is the underlying cause.
	Err error
}

// GenerationErrorCode categorizes generation errors.
type GenerationErrorCode string

const (
	// ErrCodeInvalidRequest indicates the request itself is malformed.
	ErrCodeInvalidRequest GenerationErrorCode = "INVALID_REQUEST"

	// ErrCodeResolution indicates resource resolution failed.
	ErrCodeResolution GenerationErrorCode = "RESOLUTION_FAILED"

	// ErrCodePersist indicates the batch could not be recorded.
	ErrCodePersist GenerationErrorCode = "PERSIST_FAILED"
)

// Error implements the error interface.
func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.RunID != "" {
		msg = fmt.Sprintf("%s (run=%s, class=%s)", msg, e.RunID, e.Class)
	} else if e.Class != "" {
		msg = fmt.Sprintf("%s (class=%s)", msg, e.Class)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsResolutionFailure returns true if the error is a resolution failure.
// Uses errors.As to handle wrapped errors.
func IsResolutionFailure(err error) bool {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodeResolution
	}
	return false
}

// IsPersistError returns true if the error is a persistence failure.
// Uses errors.As to handle wrapped errors.
func IsPersistError(err error) bool {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodePersist
	}
	return false
}
