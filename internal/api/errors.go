package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/irmock-api/internal/api/shared"
	"github.com/phrazzld/irmock-api/internal/auth"
	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/service"
	"github.com/phrazzld/irmock-api/internal/store"
)

// ErrNoImages is returned when a batch upload carries no file parts.
var ErrNoImages = errors.New("no images in request")

// ErrUploadTooLarge is returned when the request body exceeds the upload limit.
var ErrUploadTooLarge = errors.New("upload exceeds size limit")

// ErrMalformedBody is returned when the request body cannot be parsed.
var ErrMalformedBody = errors.New("malformed request body")

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrMissingCredential),
		errors.Is(err, auth.ErrInvalidCredential),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrTokensDisabled),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrSubmissionNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge

	// Bad request errors
	case errors.Is(err, ErrNoImages),
		errors.Is(err, ErrMalformedBody),
		errors.Is(err, service.ErrInvalidCount),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case MapErrorToStatusCode(err) == http.StatusUnauthorized:
		return "Not authorized"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrSubmissionNotFound):
		return "Image submission not found"

	case errors.Is(err, ErrNoImages):
		return "At least one image is required"

	case errors.Is(err, ErrUploadTooLarge):
		return "Upload too large"

	case errors.Is(err, ErrMalformedBody):
		return "Malformed request body"

	case errors.Is(err, service.ErrInvalidCount):
		return "Invalid image count"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid request"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status code and a safe message, logs the
// full (redacted) error and writes the response. A non-empty message
// overrides the safe message for client errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)

	userMessage := GetSafeErrorMessage(err)
	if message != "" && status < http.StatusInternalServerError {
		userMessage = message
	}

	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'UploadForm.Callback' Error:Field validation for 'Callback' failed on the 'http_url' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := strings.ToLower(fieldParts[1])
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "url", "http_url":
		return "must be an absolute http(s) URL"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}
