package invites

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"reup-backend/internal/shared/metrics"
)

const (
	// maxGenerateCount caps a single generation request.
	maxGenerateCount = 50
	// maxCodeAttempts bounds collision re-rolls per code before giving up.
	maxCodeAttempts = 10
)

// CheckResult is the outcome of a read-only validity check for a user.
type CheckResult struct {
	HasValidInvite bool
	Message        string
	InviteCode     string
}

// Service contains business logic for invite codes.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

// Generate creates count new invite codes and returns their code strings.
// count is clamped to 1..maxGenerateCount. Each code is a random 6-digit
// number; collisions with existing codes are re-rolled a bounded number of
// times, after which generation fails rather than looping forever.
func (s *Service) Generate(ctx context.Context, count int) ([]string, error) {
	if count < 1 {
		count = 1
	}
	if count > maxGenerateCount {
		count = maxGenerateCount
	}

	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		code, err := s.createOne(ctx)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func (s *Service) createOne(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		invite := InviteCode{
			ID:        uuid.NewString(),
			Code:      code,
			CreatedAt: s.Now().UTC(),
		}
		err = s.Repo.Create(ctx, invite)
		if err == nil {
			return code, nil
		}
		if errors.Is(err, ErrDuplicateCode) {
			continue
		}
		return "", err
	}
	return "", fmt.Errorf("generate invite code: %d collisions in a row", maxCodeAttempts)
}

// Assign redeems a code for a user. The precondition reads exist to produce
// specific rejection reasons; the conditional update in Repo.Redeem is the
// authoritative guard against concurrent redemption.
func (s *Service) Assign(ctx context.Context, userID, code string) (string, error) {
	now := s.Now().UTC()

	// Code validity is judged before the user's own state: a code holder
	// submitting a bad code learns the code is bad, not that they hold one.
	invite, err := s.Repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrCodeUnavailable
		}
		return "", err
	}
	if invite.Used || invite.UsedBy != nil {
		return "", ErrCodeUnavailable
	}
	if invite.ExpiredAt(now) {
		return "", ErrCodeExpired
	}
	if invite.UsageWindowElapsedAt(now) {
		return "", ErrUsageWindowElapsed
	}

	if _, err := s.Repo.GetByUser(ctx, userID); err == nil {
		return "", ErrAlreadyAssigned
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	redeemed, err := s.Repo.Redeem(ctx, code, userID, now)
	if err != nil {
		if errors.Is(err, ErrCodeUnavailable) {
			metrics.IncInviteRedemptionConflict()
		}
		return "", err
	}
	metrics.IncInviteRedemption()
	return redeemed.ID, nil
}

// CheckForUser reports whether the user holds a currently valid invite.
func (s *Service) CheckForUser(ctx context.Context, userID string) (CheckResult, error) {
	now := s.Now().UTC()

	invite, err := s.Repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return CheckResult{Message: "User needs to enter an invite code"}, nil
		}
		return CheckResult{}, err
	}
	if invite.ExpiredAt(now) {
		return CheckResult{Message: "Invite code has expired"}, nil
	}
	if invite.UsageWindowElapsedAt(now) {
		return CheckResult{Message: "Invite code has expired (1 day limit)"}, nil
	}
	return CheckResult{
		HasValidInvite: true,
		Message:        "User has valid invite code",
		InviteCode:     invite.Code,
	}, nil
}

// HasValidInvite is the access-gate view of CheckForUser.
func (s *Service) HasValidInvite(ctx context.Context, userID string) (bool, error) {
	result, err := s.CheckForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return result.HasValidInvite, nil
}

func randomCode() (string, error) {
	// 6-digit codes in 100000..999999.
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("random code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
