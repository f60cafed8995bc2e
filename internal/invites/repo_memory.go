package invites

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo implements Repo in memory for local development and tests.
type MemoryRepo struct {
	mu     sync.Mutex
	byCode map[string]InviteCode
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byCode: make(map[string]InviteCode)}
}

func (r *MemoryRepo) Create(_ context.Context, invite InviteCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byCode[invite.Code]; exists {
		return ErrDuplicateCode
	}
	r.byCode[invite.Code] = invite
	return nil
}

func (r *MemoryRepo) GetByCode(_ context.Context, code string) (InviteCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invite, ok := r.byCode[code]
	if !ok {
		return InviteCode{}, ErrNotFound
	}
	return invite, nil
}

func (r *MemoryRepo) GetByUser(_ context.Context, userID string) (InviteCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, invite := range r.byCode {
		if invite.UsedBy != nil && *invite.UsedBy == userID {
			return invite, nil
		}
	}
	return InviteCode{}, ErrNotFound
}

// Redeem mirrors the conditional-update semantics of the Postgres repo:
// the claim succeeds only while the code is unredeemed.
func (r *MemoryRepo) Redeem(_ context.Context, code, userID string, now time.Time) (InviteCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invite, ok := r.byCode[code]
	if !ok || invite.Used || invite.UsedBy != nil {
		return InviteCode{}, ErrCodeUnavailable
	}
	invite.Used = true
	invite.UsedBy = &userID
	if invite.FirstUsedAt == nil {
		t := now
		invite.FirstUsedAt = &t
	}
	r.byCode[code] = invite
	return invite, nil
}

var _ Repo = (*MemoryRepo)(nil)
