// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an identifier is empty or malformed.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidStatus is returned when a submission status is not recognized.
	ErrInvalidStatus = errors.New("invalid submission status")

	// ErrInvalidTransition is returned when a status change would leave a
	// terminal state or skip the pending state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyInState is returned when a submission is asked to move to the
	// terminal status it already has. Callers treat it as a successful no-op.
	ErrAlreadyInState = errors.New("submission already in requested state")

	// ErrInvalidResult is returned when a recognition result is empty or a
	// confidence falls outside [0, 1].
	ErrInvalidResult = errors.New("invalid recognition result")

	// ErrUnauthorized is returned when a request carries no valid credential.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// Unwrap returns the wrapped sentinel so errors.Is works against ErrValidation.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
// If err is nil, ErrValidation is used.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}
