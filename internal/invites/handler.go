package invites

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reup-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches invite redemption routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/invite/assign", h.assign)
	rg.POST("/invite/check", h.check)
}

// RegisterAdminRoutes attaches admin-only invite routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate-invite", h.generate)
}

// defaultGenerateCount is used when the request carries no count.
const defaultGenerateCount = 5

type generateRequest struct {
	Count int `json:"count"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	// Body is optional; an absent or malformed count falls back to the default.
	_ = c.ShouldBindJSON(&req)
	if req.Count == 0 {
		req.Count = defaultGenerateCount
	}

	codes, err := h.Svc.Generate(c.Request.Context(), req.Count)
	if err != nil {
		respond.Flat(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Generated %d invite codes", len(codes)),
		"codes":   codes,
	})
}

type assignRequest struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
	// Older clients sent the code under this key.
	InviteCode string `json:"inviteCode"`
}

func (h *Handler) assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Flat(c, http.StatusBadRequest, "Missing required fields")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = strings.TrimSpace(req.InviteCode)
	}
	if req.UserID == "" || code == "" {
		respond.Flat(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	codeID, err := h.Svc.Assign(c.Request.Context(), req.UserID, code)
	if err != nil {
		switch {
		case errors.Is(err, ErrCodeUnavailable):
			respond.Flat(c, http.StatusBadRequest, "Invalid or already used invite code")
		case errors.Is(err, ErrCodeExpired):
			respond.Flat(c, http.StatusBadRequest, "Invite code has expired")
		case errors.Is(err, ErrUsageWindowElapsed):
			respond.Flat(c, http.StatusBadRequest, "Invite code has expired (1 day limit)")
		case errors.Is(err, ErrAlreadyAssigned):
			respond.Flat(c, http.StatusBadRequest, "User already has an invite code assigned")
		default:
			respond.Flat(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"success": true,
		"message": "Invite code assigned successfully",
		"codeId":  codeID,
	})
}

type checkRequest struct {
	UserID string `json:"userId"`
}

func (h *Handler) check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Flat(c, http.StatusBadRequest, "Missing user ID")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		respond.Flat(c, http.StatusBadRequest, "Missing user ID")
		return
	}

	result, err := h.Svc.CheckForUser(c.Request.Context(), req.UserID)
	if err != nil {
		respond.Flat(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := gin.H{
		"hasValidInvite": result.HasValidInvite,
		"message":        result.Message,
	}
	if result.InviteCode != "" {
		resp["inviteCode"] = result.InviteCode
	}
	respond.JSON(c, http.StatusOK, resp)
}
