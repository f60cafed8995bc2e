package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reup-backend/internal/authz"
	"reup-backend/internal/shared/server/respond"
)

// RequireAccess guards a route group with the access gate: signed-in admins
// pass unconditionally, everyone else needs a valid invite code.
func RequireAccess(gate *authz.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := authz.Identity{
			UserID: UserIDFromContext(c),
			Email:  UserEmailFromContext(c),
		}
		decision := gate.Check(c.Request.Context(), id)
		switch decision.Kind {
		case authz.Granted:
			c.Next()
		case authz.NeedsSignIn:
			respond.Error(c, http.StatusUnauthorized, "sign_in_required", decision.Message, nil)
		default:
			respond.Error(c, http.StatusForbidden, "invite_required", decision.Message, nil)
		}
	}
}

// RequireAdmin rejects principals the policy does not recognize as admins.
func RequireAdmin(policy authz.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserIDFromContext(c) == "" {
			respond.Error(c, http.StatusUnauthorized, "sign_in_required", "Sign in to continue", nil)
			return
		}
		if policy == nil || !policy.IsAdmin(UserEmailFromContext(c)) {
			respond.Error(c, http.StatusForbidden, "admin_only", "Administrator access required", nil)
			return
		}
		c.Next()
	}
}
