package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Dias221467/Beer_Rating/internal/auth"
	"github.com/Dias221467/Beer_Rating/pkg/logger"
)

type contextKey string

// UserContextKey holds the *auth.Identity of the caller.
const UserContextKey contextKey = "user"

// bearerToken reads the Authorization header, falling back to the token
// query parameter for WebSocket clients that cannot set headers.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller's identity in the request context.
func AuthMiddleware(provider auth.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				logger.Log.WithField("path", r.URL.Path).Warn("Missing bearer token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := provider.Authenticate(r.Context(), token)
			if err != nil {
				logger.Log.WithError(err).Warn("Token rejected")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := WithUser(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser returns a copy of ctx carrying identity.
func WithUser(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, UserContextKey, identity)
}

// GetUserFromContext returns the authenticated caller or nil.
func GetUserFromContext(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(UserContextKey).(*auth.Identity)
	return identity
}

// RequireRole only lets callers with role through.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetUserFromContext(r.Context())
			if identity == nil || identity.Role != role {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
