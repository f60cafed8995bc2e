package users

import (
	"context"
	"testing"
)

func TestUpsertFromAuthRequiresIdentity(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if err := svc.UpsertFromAuth(context.Background(), User{Email: "a@b.c"}); err == nil {
		t.Fatal("want error for missing user id")
	}
	if err := svc.UpsertFromAuth(context.Background(), User{UserID: "u1"}); err == nil {
		t.Fatal("want error for missing email")
	}
}

func TestUpsertPreservesCreditsAndRole(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.UpsertFromAuth(ctx, User{UserID: "u1", Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("UpsertFromAuth: %v", err)
	}
	user, err := svc.GetByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if user.Credits != DefaultCredits || user.Role != "user" {
		t.Fatalf("new user defaults wrong: %+v", user)
	}

	// Second sign-in updates profile fields only.
	if err := svc.UpsertFromAuth(ctx, User{UserID: "u1", Name: "Ada L", Email: "ada@example.com", Image: "http://img"}); err != nil {
		t.Fatalf("UpsertFromAuth: %v", err)
	}
	user, err = svc.GetByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if user.Name != "Ada L" || user.Image != "http://img" {
		t.Fatalf("profile not refreshed: %+v", user)
	}
	if user.Credits != DefaultCredits {
		t.Fatalf("credits changed on re-upsert: %+v", user)
	}
}

func TestExists(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	ok, err := svc.Exists(ctx, "missing")
	if err != nil || ok {
		t.Fatalf("Exists = %v, %v; want false, nil", ok, err)
	}

	if err := svc.UpsertFromAuth(ctx, User{UserID: "u1", Email: "a@b.c", Name: "A"}); err != nil {
		t.Fatalf("UpsertFromAuth: %v", err)
	}
	ok, err = svc.Exists(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v; want true, nil", ok, err)
	}
}
