package invites

import "time"

// UsageWindow is how long a redeemed code stays valid after first use.
const UsageWindow = 24 * time.Hour

// InviteCode is a single-use access code.
type InviteCode struct {
	ID          string
	Code        string
	Used        bool
	UsedBy      *string
	FirstUsedAt *time.Time
	ExpiresAt   *time.Time
	CreatedAt   time.Time
}

// ExpiredAt reports whether the code's absolute expiry has passed at now.
func (c InviteCode) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// UsageWindowElapsedAt reports whether more than UsageWindow has passed
// since the code was first redeemed.
func (c InviteCode) UsageWindowElapsedAt(now time.Time) bool {
	return c.FirstUsedAt != nil && now.Sub(*c.FirstUsedAt) > UsageWindow
}
