package invites

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(repo Repo, now time.Time) *Service {
	svc := NewService(repo)
	svc.Now = func() time.Time { return now }
	return svc
}

func TestGenerateReturnsRequestedCount(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, time.Now())

	codes, err := svc.Generate(context.Background(), 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(codes) != 5 {
		t.Fatalf("got %d codes, want 5", len(codes))
	}
	for _, code := range codes {
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 digits", code)
		}
		if _, err := repo.GetByCode(context.Background(), code); err != nil {
			t.Fatalf("generated code %q not persisted: %v", code, err)
		}
	}
}

func TestGenerateClampsCount(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), time.Now())

	codes, err := svc.Generate(context.Background(), 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(codes) != 1 {
		t.Fatalf("count 0 should yield 1 code, got %d", len(codes))
	}

	codes, err = svc.Generate(context.Background(), 500)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(codes) != maxGenerateCount {
		t.Fatalf("count 500 should clamp to %d, got %d", maxGenerateCount, len(codes))
	}
}

type alwaysDuplicateRepo struct{ Repo }

func (alwaysDuplicateRepo) Create(context.Context, InviteCode) error { return ErrDuplicateCode }

func TestGenerateFailsAfterBoundedCollisions(t *testing.T) {
	svc := newTestService(alwaysDuplicateRepo{}, time.Now())

	_, err := svc.Generate(context.Background(), 1)
	if err == nil {
		t.Fatal("want error when every code collides")
	}
}

func TestAssignHappyPath(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)

	codes, err := svc.Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	codeID, err := svc.Assign(context.Background(), "user-1", codes[0])
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if codeID == "" {
		t.Fatal("empty code id")
	}

	invite, err := repo.GetByCode(context.Background(), codes[0])
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if !invite.Used || invite.UsedBy == nil || *invite.UsedBy != "user-1" {
		t.Fatalf("invite not claimed: %+v", invite)
	}
	if invite.FirstUsedAt == nil || !invite.FirstUsedAt.Equal(now) {
		t.Fatalf("first_used_at = %v, want %v", invite.FirstUsedAt, now)
	}
}

func TestAssignRejectsSecondRedemption(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, time.Now())

	codes, _ := svc.Generate(context.Background(), 1)
	if _, err := svc.Assign(context.Background(), "user-1", codes[0]); err != nil {
		t.Fatalf("first Assign: %v", err)
	}

	_, err := svc.Assign(context.Background(), "user-2", codes[0])
	if !errors.Is(err, ErrCodeUnavailable) {
		t.Fatalf("want ErrCodeUnavailable, got %v", err)
	}
}

func TestAssignRejectsUserWithExistingCode(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, time.Now())

	codes, _ := svc.Generate(context.Background(), 2)
	if _, err := svc.Assign(context.Background(), "user-1", codes[0]); err != nil {
		t.Fatalf("first Assign: %v", err)
	}

	_, err := svc.Assign(context.Background(), "user-1", codes[1])
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("want ErrAlreadyAssigned, got %v", err)
	}
}

func TestAssignBadCodeWinsOverExistingAssignment(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, time.Now())

	codes, _ := svc.Generate(context.Background(), 1)
	if _, err := svc.Assign(context.Background(), "user-1", codes[0]); err != nil {
		t.Fatalf("first Assign: %v", err)
	}

	// A code holder submitting a bogus code is told the code is bad, not
	// that they already hold one.
	_, err := svc.Assign(context.Background(), "user-1", "000000")
	if !errors.Is(err, ErrCodeUnavailable) {
		t.Fatalf("want ErrCodeUnavailable, got %v", err)
	}
}

func TestAssignUnknownCode(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), time.Now())

	_, err := svc.Assign(context.Background(), "user-1", "000000")
	if !errors.Is(err, ErrCodeUnavailable) {
		t.Fatalf("want ErrCodeUnavailable, got %v", err)
	}
}

func TestAssignExpiredCode(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)

	expired := now.Add(-time.Hour)
	if err := repo.Create(context.Background(), InviteCode{
		ID:        "id-1",
		Code:      "123456",
		ExpiresAt: &expired,
		CreatedAt: now.Add(-48 * time.Hour),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := svc.Assign(context.Background(), "user-1", "123456")
	if !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("want ErrCodeExpired, got %v", err)
	}
}

func TestCheckForUserStates(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)

	// No code at all.
	result, err := svc.CheckForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CheckForUser: %v", err)
	}
	if result.HasValidInvite || result.Message != "User needs to enter an invite code" {
		t.Fatalf("unexpected result: %+v", result)
	}

	// Freshly redeemed code is valid.
	codes, _ := svc.Generate(context.Background(), 1)
	if _, err := svc.Assign(context.Background(), "user-1", codes[0]); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	result, err = svc.CheckForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CheckForUser: %v", err)
	}
	if !result.HasValidInvite || result.Message != "User has valid invite code" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.InviteCode != codes[0] {
		t.Fatalf("inviteCode = %q, want %q", result.InviteCode, codes[0])
	}

	// Same code just past the 24h window.
	svc.Now = func() time.Time { return now.Add(UsageWindow + time.Minute) }
	result, err = svc.CheckForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CheckForUser: %v", err)
	}
	if result.HasValidInvite || result.Message != "Invite code has expired (1 day limit)" {
		t.Fatalf("unexpected result after window: %+v", result)
	}
}

func TestCheckForUserExactWindowBoundaryStillValid(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)

	codes, _ := svc.Generate(context.Background(), 1)
	if _, err := svc.Assign(context.Background(), "user-1", codes[0]); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	svc.Now = func() time.Time { return now.Add(UsageWindow) }
	result, err := svc.CheckForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CheckForUser: %v", err)
	}
	if !result.HasValidInvite {
		t.Fatalf("code should still be valid at exactly 24h: %+v", result)
	}
}

func TestHasValidInvite(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, time.Now())

	ok, err := svc.HasValidInvite(context.Background(), "user-1")
	if err != nil || ok {
		t.Fatalf("HasValidInvite = %v, %v; want false, nil", ok, err)
	}

	codes, _ := svc.Generate(context.Background(), 1)
	if _, err := svc.Assign(context.Background(), "user-1", codes[0]); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	ok, err = svc.HasValidInvite(context.Background(), "user-1")
	if err != nil || !ok {
		t.Fatalf("HasValidInvite = %v, %v; want true, nil", ok, err)
	}
}
