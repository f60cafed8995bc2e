package authz

import "strings"

// Policy answers the single capability question the rest of the system asks
// about a principal: is it an administrator?
type Policy interface {
	IsAdmin(email string) bool
}

// EmailAllowlist is a Policy backed by a fixed set of admin email addresses.
type EmailAllowlist struct {
	emails map[string]struct{}
}

// NewEmailAllowlist builds an allowlist policy. Addresses are compared
// case-insensitively.
func NewEmailAllowlist(emails []string) *EmailAllowlist {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if trimmed := strings.ToLower(strings.TrimSpace(e)); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return &EmailAllowlist{emails: set}
}

// IsAdmin reports whether the email is on the allowlist.
func (a *EmailAllowlist) IsAdmin(email string) bool {
	if a == nil || email == "" {
		return false
	}
	_, ok := a.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

var _ Policy = (*EmailAllowlist)(nil)
