package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"go-blog-service/internal/metrics"
)

type permissionChecker interface {
	Check(ctx context.Context, subject string, object string, action string) (bool, error)
}

// PermissionMiddleware is the authorization stage: it evaluates (caller
// username, request path, method) against the policy store. It must run
// after RequireAuth; a request without an identity in context is denied
// rather than let through.
type PermissionMiddleware struct {
	enforcer permissionChecker
}

func NewPermissionMiddleware(enforcer permissionChecker) *PermissionMiddleware {
	return &PermissionMiddleware{enforcer: enforcer}
}

func (m *PermissionMiddleware) RequirePermission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			metrics.RecordAuthDecision("authorize", false)
			writeForbidden(w)
			return
		}

		// The object is the raw request path, before any route parameter
		// extraction.
		allowed, err := m.enforcer.Check(r.Context(), identity.Username, r.URL.Path, r.Method)
		if err != nil {
			slog.Error("permission check failed", "subject", identity.Username, "path", r.URL.Path, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error")
			return
		}

		if !allowed {
			slog.Debug("permission denied", "subject", identity.Username, "object", r.URL.Path, "action", r.Method)
			metrics.RecordAuthDecision("authorize", false)
			writeForbidden(w)
			return
		}

		metrics.RecordAuthDecision("authorize", true)
		next.ServeHTTP(w, r)
	})
}

func writeForbidden(w http.ResponseWriter) {
	writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "permission denied")
}
