package invites

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoRedeemClaimsUnusedCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "code", "used", "used_by", "first_used_at", "expires_at", "created_at"}).
		AddRow("id-1", "123456", true, "user-1", now, nil, now.Add(-time.Hour))

	mock.ExpectQuery("UPDATE invite_codes").
		WithArgs("123456", "user-1", now).
		WillReturnRows(rows)

	invite, err := repo.Redeem(context.Background(), "123456", "user-1", now)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if !invite.Used || invite.UsedBy == nil || *invite.UsedBy != "user-1" {
		t.Fatalf("unexpected invite: %+v", invite)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoRedeemLostRaceReturnsUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	// Conditional update matches nothing: the code was already claimed.
	mock.ExpectQuery("UPDATE invite_codes").
		WithArgs("123456", "user-2", now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "used", "used_by", "first_used_at", "expires_at", "created_at"}))

	_, err = repo.Redeem(context.Background(), "123456", "user-2", now)
	if !errors.Is(err, ErrCodeUnavailable) {
		t.Fatalf("want ErrCodeUnavailable, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateDetectsDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("INSERT INTO invite_codes").
		WithArgs("id-1", "123456", false, nil, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Create(context.Background(), InviteCode{
		ID:        "id-1",
		Code:      "123456",
		CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("want ErrDuplicateCode, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByUserNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT id, code, used, used_by, first_used_at, expires_at, created_at").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "used", "used_by", "first_used_at", "expires_at", "created_at"}))

	_, err = repo.GetByUser(context.Background(), "user-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
