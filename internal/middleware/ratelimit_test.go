package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("auth endpoints use the stricter bucket", func(t *testing.T) {
		mw := NewRateLimitMiddleware(100, 1)
		handler := mw.Handler(okHandler)

		req1 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		rec1 := httptest.NewRecorder()
		handler.ServeHTTP(rec1, req1)
		assert.Equal(t, http.StatusOK, rec1.Code)

		// Burst of 1 is spent, the immediate retry is rejected.
		req2 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		rec2 := httptest.NewRecorder()
		handler.ServeHTTP(rec2, req2)
		assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
		assert.Equal(t, "60", rec2.Header().Get("Retry-After"))
	})

	t.Run("general endpoints keep their own bucket", func(t *testing.T) {
		mw := NewRateLimitMiddleware(100, 1)
		handler := mw.Handler(okHandler)

		exhaust := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		handler.ServeHTTP(httptest.NewRecorder(), exhaust)
		handler.ServeHTTP(httptest.NewRecorder(), exhaust)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		mw := NewRateLimitMiddleware(100, 1)
		handler := mw.Handler(okHandler)

		first := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		first.RemoteAddr = "10.0.0.1:40000"
		handler.ServeHTTP(httptest.NewRecorder(), first)

		blocked := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		blocked.RemoteAddr = "10.0.0.1:40001"
		blockedRec := httptest.NewRecorder()
		handler.ServeHTTP(blockedRec, blocked)
		assert.Equal(t, http.StatusTooManyRequests, blockedRec.Code)

		other := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		other.RemoteAddr = "10.0.0.2:40000"
		otherRec := httptest.NewRecorder()
		handler.ServeHTTP(otherRec, other)
		assert.Equal(t, http.StatusOK, otherRec.Code)
	})

	t.Run("non-positive limits fall back to defaults", func(t *testing.T) {
		mw := NewRateLimitMiddleware(0, -5)
		assert.Equal(t, 100, mw.generalRPM)
		assert.Equal(t, 10, mw.authRPM)
	})
}
