package repository

import (
	"context"
	"sort"
	"sync"

	"ecoroot/internal/model"
)

// MemoryRepository keeps accounts in process memory. It backs tests and
// deployments that run without a database.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*model.User)}
}

func (r *MemoryRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.Clone(), nil
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return ErrAlreadyExists
	}
	r.users[user.ID] = user.Clone()
	return nil
}

func (r *MemoryRepository) UpdateUser(ctx context.Context, id string, fn func(user *model.User) error) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	working := u.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	r.users[id] = working
	return working.Clone(), nil
}

func (r *MemoryRepository) GetTopUsers(ctx context.Context, limit int, roles []model.Role) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	allowed := make(map[model.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	users := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		if len(allowed) > 0 && !allowed[u.Role] {
			continue
		}
		users = append(users, u.Clone())
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].Score != users[j].Score {
			return users[i].Score > users[j].Score
		}
		return users[i].ID < users[j].ID
	})

	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}
