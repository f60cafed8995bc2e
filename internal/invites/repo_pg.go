package invites

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new invite code. Collisions on the unique code column
// are detected via ON CONFLICT DO NOTHING plus the affected-row count.
func (r *PGRepo) Create(ctx context.Context, invite InviteCode) error {
	const query = `
INSERT INTO invite_codes (id, code, used, used_by, first_used_at, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (code) DO NOTHING`

	res, err := r.DB.ExecContext(ctx, query,
		invite.ID,
		invite.Code,
		invite.Used,
		invite.UsedBy,
		invite.FirstUsedAt,
		invite.ExpiresAt,
		invite.CreatedAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicateCode
	}
	return nil
}

// GetByCode returns the invite with the given code string.
func (r *PGRepo) GetByCode(ctx context.Context, code string) (InviteCode, error) {
	const query = `
SELECT id, code, used, used_by, first_used_at, expires_at, created_at
FROM invite_codes
WHERE code = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, code))
}

// GetByUser returns the invite redeemed by the given user.
func (r *PGRepo) GetByUser(ctx context.Context, userID string) (InviteCode, error) {
	const query = `
SELECT id, code, used, used_by, first_used_at, expires_at, created_at
FROM invite_codes
WHERE used_by = $1
ORDER BY first_used_at DESC NULLS LAST
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

// Redeem performs the conditional claim. The WHERE clause is the only
// arbiter between concurrent redeemers; zero affected rows means the code
// was never there or someone else already took it.
func (r *PGRepo) Redeem(ctx context.Context, code, userID string, now time.Time) (InviteCode, error) {
	const query = `
UPDATE invite_codes
SET used = true,
    used_by = $2,
    first_used_at = COALESCE(first_used_at, $3)
WHERE code = $1 AND used = false AND used_by IS NULL
RETURNING id, code, used, used_by, first_used_at, expires_at, created_at`

	invite, err := r.scanOne(r.DB.QueryRowContext(ctx, query, code, userID, now))
	if errors.Is(err, ErrNotFound) {
		return InviteCode{}, ErrCodeUnavailable
	}
	return invite, err
}

func (r *PGRepo) scanOne(row *sql.Row) (InviteCode, error) {
	var invite InviteCode
	var usedBy sql.NullString
	var firstUsedAt sql.NullTime
	var expiresAt sql.NullTime
	err := row.Scan(
		&invite.ID,
		&invite.Code,
		&invite.Used,
		&usedBy,
		&firstUsedAt,
		&expiresAt,
		&invite.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return InviteCode{}, ErrNotFound
		}
		return InviteCode{}, err
	}
	if usedBy.Valid {
		invite.UsedBy = &usedBy.String
	}
	if firstUsedAt.Valid {
		invite.FirstUsedAt = &firstUsedAt.Time
	}
	if expiresAt.Valid {
		invite.ExpiresAt = &expiresAt.Time
	}
	return invite, nil
}

var _ Repo = (*PGRepo)(nil)
