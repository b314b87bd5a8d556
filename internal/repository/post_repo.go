package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"go-blog-service/internal/model"
)

type PostRepository struct {
	q Querier
}

func NewPostRepository(q Querier) *PostRepository {
	return &PostRepository{q: q}
}

func (r *PostRepository) Create(ctx context.Context, p model.Post) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO posts (id, owner, title, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Owner, p.Title, p.Content, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (model.Post, error) {
	var p model.Post
	err := r.q.QueryRow(ctx,
		`SELECT id, owner, title, content, created_at, updated_at
		 FROM posts WHERE id = $1`, id).
		Scan(&p.ID, &p.Owner, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Post{}, model.ErrPostNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

func (r *PostRepository) List(ctx context.Context, offset int, limit int) ([]model.Post, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, owner, title, content, created_at, updated_at
		 FROM posts ORDER BY created_at DESC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Owner, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(id) FROM posts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// UpdateOwned mutates a post only when it belongs to owner; the row filter
// is the data-layer half of the ownership guarantee.
func (r *PostRepository) UpdateOwned(ctx context.Context, owner string, p model.Post) (model.Post, error) {
	var updated model.Post
	err := r.q.QueryRow(ctx,
		`UPDATE posts SET title = $3, content = $4, updated_at = $5
		 WHERE id = $1 AND owner = $2
		 RETURNING id, owner, title, content, created_at, updated_at`,
		p.ID, owner, p.Title, p.Content, time.Now().UTC()).
		Scan(&updated.ID, &updated.Owner, &updated.Title, &updated.Content, &updated.CreatedAt, &updated.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Post{}, model.ErrPostNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("update post: %w", err)
	}
	return updated, nil
}

func (r *PostRepository) DeleteOwned(ctx context.Context, owner string, id string) error {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM posts WHERE id = $1 AND owner = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) BatchDeleteOwned(ctx context.Context, owner string, ids []string) (int, error) {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM posts WHERE owner = $1 AND id = ANY($2)`, owner, ids)
	if err != nil {
		return 0, fmt.Errorf("batch delete posts: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
