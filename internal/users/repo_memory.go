package users

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.UserID]
	now := time.Now().UTC()
	if !ok {
		r.nextID++
		user.ID = r.nextID
		user.Credits = DefaultCredits
		user.Role = "user"
		user.CreatedAt = now
	} else {
		user.ID = existing.ID
		user.Credits = existing.Credits
		user.Role = existing.Role
		user.FreeGranted = existing.FreeGranted
		user.CreatedAt = existing.CreatedAt
	}
	user.UpdatedAt = now
	r.users[user.UserID] = user
	return nil
}

func (r *MemoryRepo) GetByUserID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

var _ Repo = (*MemoryRepo)(nil)
