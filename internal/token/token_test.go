package token

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte("a-reasonably-long-signing-secret"))

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestNewService(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := NewService("  ")
		require.Error(t, err)
	})

	t.Run("rejects non-base64 secret", func(t *testing.T) {
		_, err := NewService("not base64!!!")
		require.Error(t, err)
	})

	t.Run("accepts base64 secret", func(t *testing.T) {
		_, err := NewService(testSecret)
		require.NoError(t, err)
	})
}

func TestIssueAndValidate(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewService(testSecret, WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		raw, err := svc.Issue("user-1", time.Hour, map[string]any{"role": "author"})
		require.NoError(t, err)

		claims, err := svc.Validate(raw)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.PrincipalID)
		assert.Equal(t, "author", claims.Extra["role"])
		assert.Equal(t, issuedAt.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("rejects empty principal", func(t *testing.T) {
		_, err := svc.Issue("  ", time.Hour, nil)
		require.Error(t, err)
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		_, err := svc.Issue("user-1", 0, nil)
		require.Error(t, err)
	})

	t.Run("huge ttl yields a far future expiry", func(t *testing.T) {
		raw, err := svc.Issue("user-1", time.Duration(1<<62), nil)
		require.NoError(t, err)

		claims, err := svc.Validate(raw)
		require.NoError(t, err)
		assert.True(t, claims.ExpiresAt.After(issuedAt.Add(100*365*24*time.Hour)))
	})
}

func TestValidateFailures(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := time.Hour

	issue := func(t *testing.T, at time.Time) (string, *Service) {
		t.Helper()
		svc, err := NewService(testSecret, WithClock(fixedClock(at)))
		require.NoError(t, err)
		raw, err := svc.Issue("user-1", ttl, nil)
		require.NoError(t, err)
		return raw, svc
	}

	t.Run("valid just before expiry", func(t *testing.T) {
		raw, _ := issue(t, issuedAt)
		svc, err := NewService(testSecret, WithClock(fixedClock(issuedAt.Add(ttl-time.Second))))
		require.NoError(t, err)
		_, err = svc.Validate(raw)
		require.NoError(t, err)
	})

	t.Run("invalid at exactly the expiry instant", func(t *testing.T) {
		raw, _ := issue(t, issuedAt)
		svc, err := NewService(testSecret, WithClock(fixedClock(issuedAt.Add(ttl))))
		require.NoError(t, err)
		_, err = svc.Validate(raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("invalid after expiry", func(t *testing.T) {
		raw, _ := issue(t, issuedAt)
		svc, err := NewService(testSecret, WithClock(fixedClock(issuedAt.Add(ttl+time.Minute))))
		require.NoError(t, err)
		_, err = svc.Validate(raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret fails the same way as expiry", func(t *testing.T) {
		raw, _ := issue(t, issuedAt)
		otherSecret := base64.StdEncoding.EncodeToString([]byte("a-completely-different-secret!!!"))
		svc, err := NewService(otherSecret, WithClock(fixedClock(issuedAt)))
		require.NoError(t, err)
		_, err = svc.Validate(raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects other signing algorithms", func(t *testing.T) {
		svc, err := NewService(testSecret, WithClock(fixedClock(issuedAt)))
		require.NoError(t, err)

		secret, err := base64.StdEncoding.DecodeString(testSecret)
		require.NoError(t, err)

		foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			PrincipalID: "user-1",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			},
		})
		raw, err := foreign.SignedString(secret)
		require.NoError(t, err)

		_, err = svc.Validate(raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects token without expiration", func(t *testing.T) {
		svc, err := NewService(testSecret, WithClock(fixedClock(issuedAt)))
		require.NoError(t, err)

		secret, err := base64.StdEncoding.DecodeString(testSecret)
		require.NoError(t, err)

		unbounded := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{PrincipalID: "user-1"})
		raw, err := unbounded.SignedString(secret)
		require.NoError(t, err)

		_, err = svc.Validate(raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects token without principal", func(t *testing.T) {
		svc, err := NewService(testSecret, WithClock(fixedClock(issuedAt)))
		require.NoError(t, err)

		secret, err := base64.StdEncoding.DecodeString(testSecret)
		require.NoError(t, err)

		anonymous := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			},
		})
		raw, err := anonymous.SignedString(secret)
		require.NoError(t, err)

		_, err = svc.Validate(raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		svc, err := NewService(testSecret)
		require.NoError(t, err)
		_, err = svc.Validate("not.a.token")
		require.ErrorIs(t, err, ErrInvalidToken)
		_, err = svc.Validate("")
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}
