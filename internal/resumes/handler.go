package resumes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"reup-backend/internal/shared/server/middleware"
	"reup-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterLegacyRoutes attaches the browser client's save endpoint.
func (h *Handler) RegisterLegacyRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyzed-resume", h.saveAnalyzed)
}

// RegisterRoutes attaches the resume pipeline routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.analyze)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:resumeId", h.get)
	rg.DELETE("/resumes", h.deleteAll)
}

type saveAnalyzedRequest struct {
	Data *Record `json:"data"`
}

func (h *Handler) saveAnalyzed(c *gin.Context) {
	var req saveAnalyzedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Data == nil {
		respond.Flat(c, http.StatusBadRequest, "Data is required")
		return
	}

	userID := middleware.UserIDFromContext(c)
	err := h.Svc.SaveAnalyzed(c.Request.Context(), userID, *req.Data)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			respond.Flat(c, http.StatusUnauthorized, "User not found")
		case errors.Is(err, ErrInvalidInput):
			respond.Flat(c, http.StatusBadRequest, "Data is required")
		default:
			respond.JSON(c, http.StatusInternalServerError, gin.H{
				"error":   "Failed to process request",
				"details": err.Error(),
			})
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"message": "Resume saved successfully"})
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	record, err := h.Svc.Analyze(c.Request.Context(), userID, AnalyzeRequest{
		FileName:       fileHeader.Filename,
		File:           file,
		CompanyName:    strings.TrimSpace(c.PostForm("companyName")),
		JobTitle:       strings.TrimSpace(c.PostForm("jobTitle")),
		JobDescription: strings.TrimSpace(c.PostForm("jobDescription")),
	})
	if err != nil {
		var pipeErr *PipelineError
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "jobTitle, jobDescription and a PDF file are required", nil)
		case errors.As(err, &pipeErr):
			respond.Error(c, http.StatusInternalServerError, "pipeline_error", pipeErr.Status, nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze resume", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, record)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID := c.Param("resumeId")

	record, err := h.Svc.Get(c.Request.Context(), userID, resumeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch resume", nil)
		return
	}

	respond.JSON(c, http.StatusOK, record)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	resumes, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}

	resp := make([]gin.H, 0, len(resumes))
	for _, resume := range resumes {
		resp = append(resp, gin.H{
			"id":          resume.AnalyzedResumeID,
			"companyName": resume.CompanyName,
			"jobTitle":    resume.JobTitle,
			"imagePath":   resume.ImagePath,
			"feedback":    resume.Feedback,
			"createdAt":   resume.CreatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) deleteAll(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	deleted, err := h.Svc.DeleteAll(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete resumes", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"deleted": deleted})
}
