package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/irmock-api/internal/api/shared"
	"github.com/phrazzld/irmock-api/internal/auth"
	"github.com/phrazzld/irmock-api/internal/platform/logger"
	"github.com/phrazzld/irmock-api/internal/redact"
)

// UnauthorizedDetail is the body detail of every 401 response.
const UnauthorizedDetail = "Not authorized"

// Authenticator checks the credentials carried by a request.
type Authenticator interface {
	Authenticate(r *http.Request) (*auth.Principal, error)
}

// AuthMiddleware rejects requests without a valid credential.
type AuthMiddleware struct {
	authenticator Authenticator
	public        map[string]bool
}

// NewAuthMiddleware creates an AuthMiddleware. Requests to any of the
// publicPaths skip authentication.
func NewAuthMiddleware(authenticator Authenticator, publicPaths ...string) *AuthMiddleware {
	public := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = true
	}
	return &AuthMiddleware{
		authenticator: authenticator,
		public:        public,
	}
}

// Authenticate runs before routing, so unknown paths are rejected with 401
// too when no valid credential is present. On success the principal is
// stored in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.public[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := m.authenticator.Authenticate(r)
		if err != nil {
			logger.FromContextOrDefault(r.Context(), slog.Default()).Debug("request not authorized",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("reason", redact.Error(err)))
			shared.RespondWithDetail(w, r, http.StatusUnauthorized, UnauthorizedDetail)
			return
		}

		ctx := auth.WithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
