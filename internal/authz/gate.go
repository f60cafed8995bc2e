package authz

import (
	"context"

	"reup-backend/internal/shared/telemetry"
)

// DecisionKind tags the outcome of an access check.
type DecisionKind int

const (
	// Granted means the principal may proceed.
	Granted DecisionKind = iota
	// NeedsSignIn means no authenticated identity exists.
	NeedsSignIn
	// NeedsInvite means the identity has no currently valid invite code.
	NeedsInvite
)

// String returns the wire name of the decision kind.
func (k DecisionKind) String() string {
	switch k {
	case Granted:
		return "granted"
	case NeedsSignIn:
		return "needs_sign_in"
	default:
		return "needs_invite"
	}
}

// Decision is the tagged result of an access check.
type Decision struct {
	Kind    DecisionKind
	Message string
}

// InviteChecker reports whether a user currently holds a valid invite code.
type InviteChecker interface {
	HasValidInvite(ctx context.Context, userID string) (bool, error)
}

// Gate decides whether an authenticated identity may use the application.
// Every entry point that guards access must call Check; the logic lives only
// here so the entry points cannot drift apart.
type Gate struct {
	Policy  Policy
	Invites InviteChecker
}

// Identity is the principal under evaluation.
type Identity struct {
	UserID string
	Email  string
}

// Check runs the access algorithm: sign-in required, admin bypass, then
// invite validity. Storage failures fail closed to NeedsInvite.
func (g *Gate) Check(ctx context.Context, id Identity) Decision {
	if id.UserID == "" {
		return Decision{Kind: NeedsSignIn, Message: "Sign in to continue"}
	}

	if g.Policy != nil && g.Policy.IsAdmin(id.Email) {
		return Decision{Kind: Granted}
	}

	if g.Invites == nil {
		return Decision{Kind: NeedsInvite, Message: "You need a valid invite code to access this app."}
	}

	ok, err := g.Invites.HasValidInvite(ctx, id.UserID)
	if err != nil {
		telemetry.Error("access.check_failed", map[string]any{
			"user_id": id.UserID,
			"error":   err.Error(),
		})
		return Decision{Kind: NeedsInvite, Message: "Something went wrong. Please try again."}
	}
	if !ok {
		return Decision{Kind: NeedsInvite, Message: "You need a valid invite code to access this app."}
	}
	return Decision{Kind: Granted}
}
