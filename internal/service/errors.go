package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrInvalidCount indicates a batch submission asked for zero images.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidCount = errors.New("image count must be positive")

	// ErrIDExhausted indicates no unused submission identifier could be
	// generated within the retry budget.
	ErrIDExhausted = errors.New("could not allocate a unique submission id")
)

// SubmissionServiceError is a custom error type for submission service errors.
type SubmissionServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for SubmissionServiceError.
func (e *SubmissionServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submission service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("submission service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SubmissionServiceError) Unwrap() error {
	return e.Err
}

// NewSubmissionServiceError creates a new SubmissionServiceError.
func NewSubmissionServiceError(operation, message string, err error) *SubmissionServiceError {
	return &SubmissionServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
