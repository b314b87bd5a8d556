package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-blog-service/internal/model"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every
// repository works identically inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the unit-of-work boundary used by services. WithinTx scopes
// every repository obtained from the passed Store to one transaction that
// commits only when the callback returns nil and rolls back otherwise.
type Store interface {
	Users() UserStore
	Posts() PostStore
	Policies() PolicyStore
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type UserStore interface {
	Create(ctx context.Context, u model.User) error
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Delete(ctx context.Context, username string) error
}

type PostStore interface {
	Create(ctx context.Context, p model.Post) error
	FindByID(ctx context.Context, id string) (model.Post, error)
	List(ctx context.Context, offset int, limit int) ([]model.Post, error)
	Count(ctx context.Context) (int, error)
	UpdateOwned(ctx context.Context, owner string, p model.Post) (model.Post, error)
	DeleteOwned(ctx context.Context, owner string, id string) error
	BatchDeleteOwned(ctx context.Context, owner string, ids []string) (int, error)
}

type PolicyStore interface {
	AddRule(ctx context.Context, rule model.PolicyRule) error
	RemoveRule(ctx context.Context, rule model.PolicyRule) error
	RemoveRulesForSubject(ctx context.Context, subject string) error
	RulesForSubject(ctx context.Context, subject string) ([]model.PolicyRule, error)
}

// PgStore implements Store over a pgx pool. Inside WithinTx it is rebound
// to the open transaction; a nested WithinTx reuses that scope.
type PgStore struct {
	pool *pgxpool.Pool
	q    Querier
}

var _ Store = (*PgStore)(nil)

func NewStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, q: pool}
}

func (s *PgStore) Users() UserStore {
	return &UserRepository{q: s.q}
}

func (s *PgStore) Posts() PostStore {
	return &PostRepository{q: s.q}
}

func (s *PgStore) Policies() PolicyStore {
	return &PolicyRepository{q: s.q}
}

func (s *PgStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.pool == nil {
		// Already transaction-bound: join the surrounding unit of work.
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// No-op once committed; guarantees rollback on error, panic or
		// caller cancellation.
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&PgStore{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is the storage-layer uniqueness
// backstop firing (PostgreSQL error class 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
