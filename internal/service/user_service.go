package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-blog-service/internal/model"
	"go-blog-service/internal/password"
	"go-blog-service/internal/policy"
	"go-blog-service/internal/repository"
	"go-blog-service/pkg/apierror"
)

const (
	maxUsernameLen = 50
	minPasswordLen = 8
	// bcrypt silently truncates beyond 72 bytes, so longer inputs are
	// rejected up front.
	maxPasswordLen = 72
)

type UserService struct {
	store        repository.Store
	resourceRoot string
}

// NewUserService builds the identity service. resourceRoot is the path
// prefix of the user namespace the self-grant rule protects, e.g.
// "/api/v1/users".
func NewUserService(store repository.Store, resourceRoot string) *UserService {
	return &UserService{store: store, resourceRoot: strings.TrimSuffix(resourceRoot, "/")}
}

// Create registers an identity and its self-grant rule in one transaction.
// Either both the user row and the rule exist afterwards, or neither does.
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validateCreateUser(req); err != nil {
		return model.User{}, err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		slog.Error("password hash failed", "error", err)
		return model.User{}, apierror.Internal("could not create user")
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		Phone:        req.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		exists, err := tx.Users().ExistsByUsername(ctx, user.Username)
		if err != nil {
			return fmt.Errorf("uniqueness check: %w", err)
		}
		if exists {
			return model.ErrUserAlreadyExists
		}

		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}

		rule := policy.SelfGrantRule(user.Username, s.resourceRoot)
		if err := tx.Policies().AddRule(ctx, rule); err != nil {
			return fmt.Errorf("grant self rule: %w", err)
		}
		return nil
	})
	if errors.Is(err, model.ErrUserAlreadyExists) {
		return model.User{}, apierror.Conflict("username already exists", req.Username)
	}
	if err != nil {
		slog.Error("create user failed", "username", req.Username, "error", err)
		return model.User{}, apierror.Internal("could not create user")
	}

	return user, nil
}

func (s *UserService) Get(ctx context.Context, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUsernameLen {
		return model.User{}, apierror.BadRequest("invalid username", "username")
	}

	user, err := s.store.Users().FindByUsername(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, apierror.NotFound("user not found", username)
	}
	if err != nil {
		slog.Error("get user failed", "username", username, "error", err)
		return model.User{}, apierror.Internal("could not load user")
	}
	return user, nil
}

// FindByID resolves a token's principal id to a full identity. Used by the
// authentication stage.
func (s *UserService) FindByID(ctx context.Context, id string) (model.User, error) {
	return s.store.Users().FindByID(ctx, id)
}

// Delete removes the identity row and every rule granted to it as one
// atomic unit.
func (s *UserService) Delete(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUsernameLen {
		return apierror.BadRequest("invalid username", "username")
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Delete(ctx, username); err != nil {
			return err
		}
		return tx.Policies().RemoveRulesForSubject(ctx, username)
	})
	if errors.Is(err, model.ErrUserNotFound) {
		return apierror.NotFound("user not found", username)
	}
	if err != nil {
		slog.Error("delete user failed", "username", username, "error", err)
		return apierror.Internal("could not delete user")
	}
	return nil
}

func validateCreateUser(req model.CreateUserRequest) error {
	if req.Username == "" || len(req.Username) > maxUsernameLen {
		return apierror.BadRequest("username must be 1-50 characters", "username")
	}
	if len(req.Password) < minPasswordLen || len(req.Password) > maxPasswordLen {
		return apierror.BadRequest("password must be 8-72 characters", "password")
	}
	if req.Email != nil && *req.Email != "" {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return apierror.BadRequest("invalid email address", "email")
		}
	}
	return nil
}
