package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	googleauth "reup-backend/internal/auth"
	"reup-backend/internal/authz"
	"reup-backend/internal/invites"
	"reup-backend/internal/resumes"
	"reup-backend/internal/shared/config"
	"reup-backend/internal/shared/metrics"
	"reup-backend/internal/shared/server/middleware"
	"reup-backend/internal/shared/server/respond"
	"reup-backend/internal/users"
)

// resumesRateRule bounds per-user traffic on the resume routes. Analysis
// runs upload, rasterize and call the AI provider, so the refill is slow.
var resumesRateRule = middleware.RateLimitRule{Rate: 1, Burst: 10}

// RouterDeps carries the handlers and policies the router wires up.
type RouterDeps struct {
	Config     config.Config
	Gate       *authz.Gate
	Policy     authz.Policy
	GoogleAuth *googleauth.GoogleService
	Invites    *invites.Handler
	Users      *users.Handler
	Resumes    *resumes.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)

	limiter := middleware.NewRateLimiter(time.Now)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	api.GET("/access", accessCheck(deps.Gate))

	deps.Users.RegisterRoutes(api)
	deps.Invites.RegisterRoutes(api)
	deps.Resumes.RegisterLegacyRoutes(api)

	admin := api.Group("/admin", middleware.RequireAdmin(deps.Policy))
	deps.Invites.RegisterAdminRoutes(admin)
	admin.GET("/metrics", metrics.Handler())

	gated := api.Group("",
		middleware.RequireAccess(deps.Gate),
		middleware.RateLimit(limiter, "resumes", resumesRateRule),
	)
	deps.Resumes.RegisterRoutes(gated)

	return r
}

// accessCheck exposes the gate decision to the UI so it can route the user
// to sign-in or the invite wall before hitting a guarded endpoint.
func accessCheck(gate *authz.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := authz.Identity{
			UserID: middleware.UserIDFromContext(c),
			Email:  middleware.UserEmailFromContext(c),
		}
		decision := gate.Check(c.Request.Context(), id)
		respond.JSON(c, http.StatusOK, gin.H{
			"access":  decision.Kind.String(),
			"message": decision.Message,
		})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
