package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-blog-service/internal/model"
	"go-blog-service/internal/token"
)

type stubValidator struct {
	claims *token.Claims
	err    error
	seen   string
}

func (s *stubValidator) Validate(raw string) (*token.Claims, error) {
	s.seen = raw
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

type stubResolver struct {
	user model.User
	err  error
}

func (s *stubResolver) FindByID(_ context.Context, _ string) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	return s.user, nil
}

func echoIdentity(t *testing.T, want string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, want, identity.Username)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	validClaims := &token.Claims{PrincipalID: "user-1"}
	alice := model.User{ID: "user-1", Username: "alice"}

	t.Run("attaches identity on success", func(t *testing.T) {
		validator := &stubValidator{claims: validClaims}
		mw := NewAuthMiddleware(validator, &stubResolver{user: alice})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
		req.Header.Set("Authorization", "Bearer sometoken")
		rec := httptest.NewRecorder()

		mw.RequireAuth(echoIdentity(t, "alice")).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "sometoken", validator.seen)
	})

	t.Run("missing header", func(t *testing.T) {
		mw := NewAuthMiddleware(&stubValidator{claims: validClaims}, &stubResolver{user: alice})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
		rec := httptest.NewRecorder()

		mw.RequireAuth(failIfReached(t)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("scheme prefix is case sensitive", func(t *testing.T) {
		mw := NewAuthMiddleware(&stubValidator{claims: validClaims}, &stubResolver{user: alice})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
		req.Header.Set("Authorization", "bearer sometoken")
		rec := httptest.NewRecorder()

		mw.RequireAuth(failIfReached(t)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		mw := NewAuthMiddleware(&stubValidator{err: token.ErrInvalidToken}, &stubResolver{user: alice})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
		req.Header.Set("Authorization", "Bearer expired")
		rec := httptest.NewRecorder()

		mw.RequireAuth(failIfReached(t)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown principal looks like an invalid token", func(t *testing.T) {
		mw := NewAuthMiddleware(&stubValidator{claims: validClaims}, &stubResolver{err: model.ErrUserNotFound})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
		req.Header.Set("Authorization", "Bearer sometoken")
		rec := httptest.NewRecorder()
		mw.RequireAuth(failIfReached(t)).ServeHTTP(rec, req)

		badReq := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
		badReq.Header.Set("Authorization", "Bearer forged")
		badRec := httptest.NewRecorder()
		badMw := NewAuthMiddleware(&stubValidator{err: errors.New("bad signature")}, &stubResolver{user: alice})
		badMw.RequireAuth(failIfReached(t)).ServeHTTP(badRec, badReq)

		// Identical status and body for both failure modes.
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, badRec.Code, rec.Code)
		assert.Equal(t, badRec.Body.String(), rec.Body.String())
	})
}

func TestIdentityFromContext(t *testing.T) {
	t.Parallel()

	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)
}

func failIfReached(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("next handler should not run")
	})
}
