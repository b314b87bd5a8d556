package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go-blog-service/internal/metrics"
	"go-blog-service/internal/model"
	"go-blog-service/internal/token"
)

const (
	authHeader  = "Authorization"
	tokenPrefix = "Bearer "
)

type tokenValidator interface {
	Validate(raw string) (*token.Claims, error)
}

type identityResolver interface {
	FindByID(ctx context.Context, id string) (model.User, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

// AuthMiddleware is the authentication stage: it turns a bearer token into
// a full identity attached to the request context, or ends the request.
type AuthMiddleware struct {
	validator tokenValidator
	users     identityResolver
}

func NewAuthMiddleware(validator tokenValidator, users identityResolver) *AuthMiddleware {
	return &AuthMiddleware{validator: validator, users: users}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(authHeader)
		if header == "" || !strings.HasPrefix(header, tokenPrefix) {
			metrics.RecordAuthDecision("authenticate", false)
			writeUnauthorized(w)
			return
		}

		claims, err := m.validator.Validate(strings.TrimSpace(header[len(tokenPrefix):]))
		if err != nil {
			slog.Debug("token rejected", "cause", err)
			metrics.RecordAuthDecision("authenticate", false)
			writeUnauthorized(w)
			return
		}

		// A valid token whose principal no longer exists is reported
		// exactly like an invalid token, so callers cannot tell a deleted
		// account from a forged credential.
		user, err := m.users.FindByID(r.Context(), claims.PrincipalID)
		if err != nil {
			slog.Debug("identity lookup failed", "principal_id", claims.PrincipalID, "cause", err)
			metrics.RecordAuthDecision("authenticate", false)
			writeUnauthorized(w)
			return
		}

		metrics.RecordAuthDecision("authenticate", true)
		ctx := context.WithValue(r.Context(), identityContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the identity resolved by the authentication
// stage.
func IdentityFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(identityContextKey).(model.User)
	return user, ok
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials")
}
