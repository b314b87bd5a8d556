package service

import (
	"context"
	"sort"

	"go-blog-service/internal/model"
	"go-blog-service/internal/repository"
)

// memStore is an in-memory repository.Store with transactional semantics:
// WithinTx snapshots the state and restores it when the callback errors,
// mirroring a database rollback.
type memStore struct {
	users map[string]model.User
	posts map[string]model.Post
	rules []model.PolicyRule

	failAddRule     error
	failCreatePost  error
	failCountPosts  error
	failRemoveRules error
}

var _ repository.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		users: map[string]model.User{},
		posts: map[string]model.Post{},
	}
}

func (m *memStore) snapshot() *memStore {
	clone := &memStore{
		users: make(map[string]model.User, len(m.users)),
		posts: make(map[string]model.Post, len(m.posts)),
		rules: append([]model.PolicyRule(nil), m.rules...),
	}
	for k, v := range m.users {
		clone.users[k] = v
	}
	for k, v := range m.posts {
		clone.posts[k] = v
	}
	return clone
}

func (m *memStore) restore(snap *memStore) {
	m.users = snap.users
	m.posts = snap.posts
	m.rules = snap.rules
}

func (m *memStore) Users() repository.UserStore {
	return &memUsers{m}
}

func (m *memStore) Posts() repository.PostStore {
	return &memPosts{m}
}

func (m *memStore) Policies() repository.PolicyStore {
	return &memPolicies{m}
}

func (m *memStore) WithinTx(_ context.Context, fn func(tx repository.Store) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memUsers struct{ m *memStore }

func (r *memUsers) Create(_ context.Context, u model.User) error {
	for _, existing := range r.m.users {
		if existing.Username == u.Username {
			return model.ErrUserAlreadyExists
		}
	}
	r.m.users[u.ID] = u
	return nil
}

func (r *memUsers) FindByID(_ context.Context, id string) (model.User, error) {
	u, ok := r.m.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r *memUsers) FindByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range r.m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (r *memUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range r.m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) Delete(_ context.Context, username string) error {
	for id, u := range r.m.users {
		if u.Username == username {
			delete(r.m.users, id)
			return nil
		}
	}
	return model.ErrUserNotFound
}

type memPosts struct{ m *memStore }

func (r *memPosts) Create(_ context.Context, p model.Post) error {
	if r.m.failCreatePost != nil {
		return r.m.failCreatePost
	}
	r.m.posts[p.ID] = p
	return nil
}

func (r *memPosts) FindByID(_ context.Context, id string) (model.Post, error) {
	p, ok := r.m.posts[id]
	if !ok {
		return model.Post{}, model.ErrPostNotFound
	}
	return p, nil
}

func (r *memPosts) List(_ context.Context, offset int, limit int) ([]model.Post, error) {
	all := make([]model.Post, 0, len(r.m.posts))
	for _, p := range r.m.posts {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memPosts) Count(_ context.Context) (int, error) {
	if r.m.failCountPosts != nil {
		return 0, r.m.failCountPosts
	}
	return len(r.m.posts), nil
}

func (r *memPosts) UpdateOwned(_ context.Context, owner string, p model.Post) (model.Post, error) {
	existing, ok := r.m.posts[p.ID]
	if !ok || existing.Owner != owner {
		return model.Post{}, model.ErrPostNotFound
	}
	existing.Title = p.Title
	existing.Content = p.Content
	r.m.posts[p.ID] = existing
	return existing, nil
}

func (r *memPosts) DeleteOwned(_ context.Context, owner string, id string) error {
	existing, ok := r.m.posts[id]
	if !ok || existing.Owner != owner {
		return model.ErrPostNotFound
	}
	delete(r.m.posts, id)
	return nil
}

func (r *memPosts) BatchDeleteOwned(_ context.Context, owner string, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		existing, ok := r.m.posts[id]
		if ok && existing.Owner == owner {
			delete(r.m.posts, id)
			deleted++
		}
	}
	return deleted, nil
}

type memPolicies struct{ m *memStore }

func (r *memPolicies) AddRule(_ context.Context, rule model.PolicyRule) error {
	if r.m.failAddRule != nil {
		return r.m.failAddRule
	}
	for _, existing := range r.m.rules {
		if existing == rule {
			return nil
		}
	}
	r.m.rules = append(r.m.rules, rule)
	return nil
}

func (r *memPolicies) RemoveRule(_ context.Context, rule model.PolicyRule) error {
	out := make([]model.PolicyRule, 0, len(r.m.rules))
	for _, existing := range r.m.rules {
		if existing != rule {
			out = append(out, existing)
		}
	}
	r.m.rules = out
	return nil
}

func (r *memPolicies) RemoveRulesForSubject(_ context.Context, subject string) error {
	if r.m.failRemoveRules != nil {
		return r.m.failRemoveRules
	}
	out := make([]model.PolicyRule, 0, len(r.m.rules))
	for _, existing := range r.m.rules {
		if existing.Subject != subject {
			out = append(out, existing)
		}
	}
	r.m.rules = out
	return nil
}

func (r *memPolicies) RulesForSubject(_ context.Context, subject string) ([]model.PolicyRule, error) {
	var out []model.PolicyRule
	for _, existing := range r.m.rules {
		if existing.Subject == subject {
			out = append(out, existing)
		}
	}
	return out, nil
}
