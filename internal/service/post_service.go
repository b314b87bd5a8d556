package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-blog-service/internal/model"
	"go-blog-service/internal/repository"
	"go-blog-service/pkg/apierror"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type PostService struct {
	store repository.Store
}

func NewPostService(store repository.Store) *PostService {
	return &PostService{store: store}
}

func (s *PostService) Create(ctx context.Context, owner string, req model.CreatePostRequest) (model.Post, error) {
	if err := validatePostBody(req.Title, req.Content); err != nil {
		return model.Post{}, err
	}

	now := time.Now().UTC()
	post := model.Post{
		ID:        uuid.NewString(),
		Owner:     owner,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.Posts().Create(ctx, post)
	})
	if err != nil {
		slog.Error("create post failed", "owner", owner, "error", err)
		return model.Post{}, apierror.Internal("could not create post")
	}
	return post, nil
}

// Get reads a single post. Reads are not owner-scoped: any authenticated
// caller can see any post.
func (s *PostService) Get(ctx context.Context, id string) (model.Post, error) {
	if strings.TrimSpace(id) == "" {
		return model.Post{}, apierror.BadRequest("post id is required", "id")
	}

	post, err := s.store.Posts().FindByID(ctx, id)
	if errors.Is(err, model.ErrPostNotFound) {
		return model.Post{}, apierror.NotFound("post not found", id)
	}
	if err != nil {
		slog.Error("get post failed", "post_id", id, "error", err)
		return model.Post{}, apierror.Internal("could not load post")
	}
	return post, nil
}

// List returns a page of posts newest first plus the total count, read in
// one transaction so the two are consistent with each other.
func (s *PostService) List(ctx context.Context, offset int, limit int) (model.PostList, error) {
	if offset < 0 {
		return model.PostList{}, apierror.BadRequest("offset must not be negative", "offset")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		return model.PostList{}, apierror.BadRequest("limit must be at most 100", "limit")
	}

	var list model.PostList
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		posts, err := tx.Posts().List(ctx, offset, limit)
		if err != nil {
			return err
		}
		total, err := tx.Posts().Count(ctx)
		if err != nil {
			return err
		}
		list = model.PostList{Total: total, Posts: posts}
		return nil
	})
	if err != nil {
		slog.Error("list posts failed", "error", err)
		return model.PostList{}, apierror.Internal("could not list posts")
	}
	return list, nil
}

// Update mutates a post only when it belongs to owner.
func (s *PostService) Update(ctx context.Context, owner string, id string, req model.UpdatePostRequest) (model.Post, error) {
	if strings.TrimSpace(id) == "" {
		return model.Post{}, apierror.BadRequest("post id is required", "id")
	}
	if err := validatePostBody(req.Title, req.Content); err != nil {
		return model.Post{}, err
	}

	var updated model.Post
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		post, err := tx.Posts().UpdateOwned(ctx, owner, model.Post{
			ID:      id,
			Title:   strings.TrimSpace(req.Title),
			Content: req.Content,
		})
		if err != nil {
			return err
		}
		updated = post
		return nil
	})
	if errors.Is(err, model.ErrPostNotFound) {
		return model.Post{}, apierror.NotFound("post not found", id)
	}
	if err != nil {
		slog.Error("update post failed", "owner", owner, "post_id", id, "error", err)
		return model.Post{}, apierror.Internal("could not update post")
	}
	return updated, nil
}

func (s *PostService) Delete(ctx context.Context, owner string, id string) error {
	if strings.TrimSpace(id) == "" {
		return apierror.BadRequest("post id is required", "id")
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.Posts().DeleteOwned(ctx, owner, id)
	})
	if errors.Is(err, model.ErrPostNotFound) {
		return apierror.NotFound("post not found", id)
	}
	if err != nil {
		slog.Error("delete post failed", "owner", owner, "post_id", id, "error", err)
		return apierror.Internal("could not delete post")
	}
	return nil
}

// BatchDelete removes the caller's posts among ids and reports how many
// rows went away. Ids owned by someone else are silently skipped by the
// row filter.
func (s *PostService) BatchDelete(ctx context.Context, owner string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, apierror.BadRequest("ids must not be empty", "ids")
	}

	var deleted int
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		n, err := tx.Posts().BatchDeleteOwned(ctx, owner, ids)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		slog.Error("batch delete posts failed", "owner", owner, "error", err)
		return 0, apierror.Internal("could not delete posts")
	}
	return deleted, nil
}

func validatePostBody(title string, content string) error {
	if strings.TrimSpace(title) == "" {
		return apierror.BadRequest("title is required", "title")
	}
	if strings.TrimSpace(content) == "" {
		return apierror.BadRequest("content is required", "content")
	}
	return nil
}
