package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// KeyVerifier checks a presented API key.
type KeyVerifier interface {
	Verify(presented string) error
}

// PlainKeyVerifier compares against a configured key in constant time.
type PlainKeyVerifier struct {
	key []byte
}

// NewPlainKeyVerifier creates a verifier for key.
func NewPlainKeyVerifier(key string) *PlainKeyVerifier {
	return &PlainKeyVerifier{key: []byte(key)}
}

// Verify implements KeyVerifier.
func (v *PlainKeyVerifier) Verify(presented string) error {
	if len(v.key) == 0 || subtle.ConstantTimeCompare(v.key, []byte(presented)) != 1 {
		return ErrInvalidCredential
	}
	return nil
}

// BcryptKeyVerifier compares against a bcrypt hash of the key.
type BcryptKeyVerifier struct {
	hash []byte
}

// NewBcryptKeyVerifier creates a verifier for a bcrypt hash.
// Returns an error if hash is not a bcrypt hash.
func NewBcryptKeyVerifier(hash string) (*BcryptKeyVerifier, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid api key hash: %w", err)
	}
	return &BcryptKeyVerifier{hash: []byte(hash)}, nil
}

// Verify implements KeyVerifier.
func (v *BcryptKeyVerifier) Verify(presented string) error {
	err := bcrypt.CompareHashAndPassword(v.hash, []byte(presented))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredential
	}
	return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
}

// HashAPIKey returns the bcrypt hash of key at the given cost.
// A cost below bcrypt.MinCost selects bcrypt.DefaultCost.
func HashAPIKey(key string, cost int) (string, error) {
	if key == "" {
		return "", fmt.Errorf("api key cannot be empty")
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash api key: %w", err)
	}
	return string(hash), nil
}
