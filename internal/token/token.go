package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every validation failure: bad signature, expiry,
// malformed input. Callers must not distinguish them externally; the
// wrapped cause is for internal logging only.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload: a principal reference, an absolute
// expiration and an optional opaque extension payload.
type Claims struct {
	PrincipalID string         `json:"pid"`
	Extra       map[string]any `json:"claims,omitempty"`
	jwt.RegisteredClaims
}

// Service issues and validates HS512-signed bearer tokens. It is stateless:
// a token stays valid until natural expiry, revocation is out of scope.
type Service struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source. Test use.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService decodes the base64 encoded signing secret and returns a
// ready-to-use service.
func NewService(base64Secret string, opts ...Option) (*Service, error) {
	base64Secret = strings.TrimSpace(base64Secret)
	if base64Secret == "" {
		return nil, errors.New("token secret is required")
	}

	secret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode token secret: %w", err)
	}

	s := &Service{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for the principal expiring ttl from now. The
// expiration saturates instead of wrapping when now + ttl overflows.
func (s *Service) Issue(principalID string, ttl time.Duration, extra map[string]any) (string, error) {
	if strings.TrimSpace(principalID) == "" {
		return "", errors.New("principal id is required")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be greater than zero")
	}

	now := s.now().UTC()
	exp := now.Unix() + int64(ttl/time.Second)
	if exp < now.Unix() {
		exp = math.MaxInt64
	}

	claims := Claims{
		PrincipalID: principalID,
		Extra:       extra,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Unix(exp, 0)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the HS512 signature and the expiration with zero
// leeway: a token checked at exactly its expiry instant is already invalid.
func (s *Service) Validate(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{},
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.PrincipalID) == "" {
		return nil, fmt.Errorf("%w: missing principal", ErrInvalidToken)
	}
	return claims, nil
}
