package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/event-registration-api/internal/domain"
	jwtinfra "github.com/event-registration-api/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// writeError emits the same JSON error envelope the handlers use, so clients
// see a consistent Content-Type on middleware rejections.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// SessionChecker validates that the session behind a token is still live.
type SessionChecker interface {
	CurrentSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

// Auth returns middleware that validates the Bearer JWT, confirms the backing
// session is neither revoked nor expired, and injects claims into context. A
// valid signature alone is not enough; the session row is the source of truth
// for revocation.
func Auth(provider *jwtinfra.Provider, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := provider.Verify(tokenStr)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if _, err := sessions.CurrentSession(r.Context(), claims.SessionID); err != nil {
				writeError(w, http.StatusUnauthorized, "session expired or revoked")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}
