package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

// Upsert keeps the profile columns fresh on every sign-in without touching
// credits, role, or the free-grant flag on existing rows.
func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (user_id, name, email, image, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (user_id) DO UPDATE SET
  name = EXCLUDED.name,
  email = EXCLUDED.email,
  image = EXCLUDED.image,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		user.UserID,
		user.Name,
		user.Email,
		nullableString(user.Image),
	)
	return err
}

func (r *PGRepo) GetByUserID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, user_id, name, email, image, credits, role, free_granted, created_at, updated_at
FROM users
WHERE user_id = $1
LIMIT 1`
	var user User
	var image sql.NullString
	var updatedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.UserID,
		&user.Name,
		&user.Email,
		&image,
		&user.Credits,
		&user.Role,
		&user.FreeGranted,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if image.Valid {
		user.Image = image.String
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	} else {
		user.UpdatedAt = time.Now().UTC()
	}
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
