package auth

import "errors"

// Common authentication errors
var (
	// ErrMissingCredential indicates the request carried neither an API key nor a bearer token
	ErrMissingCredential = errors.New("authentication credential is missing")

	// ErrInvalidCredential indicates the API key did not match
	ErrInvalidCredential = errors.New("invalid authentication credential")

	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrTokensDisabled indicates bearer tokens are not configured for this deployment
	ErrTokensDisabled = errors.New("bearer tokens are not enabled")
)
