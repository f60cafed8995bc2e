package invites

import (
	"context"
	"time"
)

// Repo defines persistence for invite codes.
type Repo interface {
	// Create inserts a new invite code. Returns ErrDuplicateCode when the
	// code string collides with an existing row.
	Create(ctx context.Context, invite InviteCode) error
	// GetByCode returns the invite with the given code string.
	GetByCode(ctx context.Context, code string) (InviteCode, error)
	// GetByUser returns the invite redeemed by the given user.
	GetByUser(ctx context.Context, userID string) (InviteCode, error)
	// Redeem marks the code used by userID if and only if it is still
	// unredeemed. The conditional update is the authoritative guard: zero
	// affected rows means another request won the race and the caller gets
	// ErrCodeUnavailable.
	Redeem(ctx context.Context, code, userID string, now time.Time) (InviteCode, error)
}
