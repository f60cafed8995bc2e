package invites

import "errors"

var (
	// ErrNotFound indicates no invite code matched the lookup.
	ErrNotFound = errors.New("invite code not found")
	// ErrDuplicateCode indicates a generated code collided with an existing one.
	ErrDuplicateCode = errors.New("invite code already exists")
	// ErrCodeUnavailable indicates the code does not exist or was already redeemed.
	ErrCodeUnavailable = errors.New("invite code invalid or already used")
	// ErrCodeExpired indicates the code's absolute expiry has passed.
	ErrCodeExpired = errors.New("invite code expired")
	// ErrUsageWindowElapsed indicates the code was first used more than 24h ago.
	ErrUsageWindowElapsed = errors.New("invite code usage window elapsed")
	// ErrAlreadyAssigned indicates the user already redeemed a code.
	ErrAlreadyAssigned = errors.New("user already has an invite code")
)
