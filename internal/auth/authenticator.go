package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/phrazzld/irmock-api/internal/config"
)

// APIKeyHeader is the header carrying the shared API key.
const APIKeyHeader = "x-api-key"

// Principal identifies an authenticated caller.
type Principal struct {
	// Method is "api_key" or "bearer".
	Method  string
	Subject string
}

// Authenticator checks request credentials.
type Authenticator struct {
	keys   KeyVerifier
	tokens *TokenService
}

// NewAuthenticator builds an Authenticator from configuration. A configured
// key hash takes precedence over the plain key; bearer tokens are accepted
// only when a JWT secret is set.
func NewAuthenticator(cfg config.AuthConfig) (*Authenticator, error) {
	a := &Authenticator{}

	if cfg.APIKeyHash != "" {
		v, err := NewBcryptKeyVerifier(cfg.APIKeyHash)
		if err != nil {
			return nil, err
		}
		a.keys = v
	} else {
		a.keys = NewPlainKeyVerifier(cfg.APIKey)
	}

	if cfg.JWTSecret != "" {
		ts, err := NewTokenService(cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
		a.tokens = ts
	}

	return a, nil
}

// Tokens returns the token service, or nil when bearer tokens are disabled.
func (a *Authenticator) Tokens() *TokenService {
	return a.tokens
}

// Authenticate checks the x-api-key header first, then an Authorization
// bearer token. The API key wins when both are present.
func (a *Authenticator) Authenticate(r *http.Request) (*Principal, error) {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		if err := a.keys.Verify(key); err != nil {
			return nil, err
		}
		return &Principal{Method: "api_key", Subject: "api_key"}, nil
	}

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, ErrMissingCredential
	}
	if a.tokens == nil {
		return nil, ErrTokensDisabled
	}

	claims, err := a.tokens.ValidateToken(r.Context(), token)
	if err != nil {
		return nil, err
	}
	return &Principal{Method: "bearer", Subject: claims.Subject}, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok
}
