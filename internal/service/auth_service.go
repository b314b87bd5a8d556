package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go-blog-service/internal/model"
	"go-blog-service/internal/password"
	"go-blog-service/internal/repository"
	"go-blog-service/internal/token"
	"go-blog-service/pkg/apierror"
)

type AuthService struct {
	store  repository.Store
	tokens *token.Service
	ttl    time.Duration
}

func NewAuthService(store repository.Store, tokens *token.Service, ttl time.Duration) *AuthService {
	return &AuthService{store: store, tokens: tokens, ttl: ttl}
}

// Login verifies credentials and issues a bearer token. Unknown username
// and wrong password produce the same error so callers cannot probe for
// registered accounts.
func (s *AuthService) Login(ctx context.Context, username string, candidate string) (model.TokenResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || candidate == "" {
		return model.TokenResponse{}, apierror.BadRequest("username and password are required", "")
	}

	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		slog.Debug("login rejected", "username", username, "cause", err)
		return model.TokenResponse{}, apierror.Unauthorized("invalid credentials")
	}

	if err := password.Verify(user.PasswordHash, candidate); err != nil {
		slog.Debug("login rejected", "username", username, "cause", "password mismatch")
		return model.TokenResponse{}, apierror.Unauthorized("invalid credentials")
	}

	signed, err := s.tokens.Issue(user.ID, s.ttl, nil)
	if err != nil {
		slog.Error("token issue failed", "username", username, "error", err)
		return model.TokenResponse{}, apierror.Internal("could not issue token")
	}

	return model.TokenResponse{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresIn: int64(s.ttl.Seconds()),
	}, nil
}
