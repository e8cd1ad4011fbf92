package profiles

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"classify-backend/internal/shared/metrics"
	"classify-backend/internal/shared/server/respond"
	"classify-backend/internal/shared/telemetry"
)

const (
	msgInvalidData      = "Invalid data provided"
	msgNotConfigured    = "OpenAI API key not configured. Please set OPENAI_API_KEY in your .env file."
	msgSaveFailed       = "Failed to save profile"
	msgGenerationFailed = "Failed to generate recommendations"
	msgNotFound         = "Profile not found"
	msgListFailed       = "Failed to list profiles"
	msgFetchFailed      = "Failed to fetch profile"
)

// Handler wires HTTP handlers to the profiles service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	useJSONFieldNames()
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches profile routes; each path is served with and without a trailing slash.
// Extra handlers run before classify, e.g. a rate limiter.
func (h *Handler) RegisterRoutes(rg gin.IRoutes, classifyMiddleware ...gin.HandlerFunc) {
	classify := append(append([]gin.HandlerFunc{}, classifyMiddleware...), h.classify)
	rg.POST("/classify", classify...)
	rg.POST("/classify/", classify...)
	rg.GET("/profiles", h.listProfiles)
	rg.GET("/profiles/", h.listProfiles)
	rg.GET("/profiles/:id", h.getProfile)
	rg.GET("/profiles/:id/", h.getProfile)
}

func (h *Handler) classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncClassify("invalid")
		respond.Error(c, http.StatusBadRequest, msgInvalidData, validationDetails(err))
		return
	}

	out, err := h.Svc.Classify(c.Request.Context(), req.NewProfile())
	if err != nil {
		switch {
		case errors.Is(err, ErrNotConfigured):
			metrics.IncClassify("not_configured")
			respond.Error(c, http.StatusInternalServerError, msgNotConfigured, nil)
		case errors.Is(err, ErrGeneration):
			metrics.IncClassify("failed")
			telemetry.Error("classify.generation_failed", map[string]any{
				"request_id": telemetry.RequestIDFromContext(c.Request.Context()),
				"err":        err,
			})
			respond.Error(c, http.StatusInternalServerError, msgGenerationFailed, nil)
		default:
			metrics.IncClassify("failed")
			telemetry.Error("classify.persistence_failed", map[string]any{
				"request_id": telemetry.RequestIDFromContext(c.Request.Context()),
				"err":        err,
			})
			respond.Error(c, http.StatusInternalServerError, msgSaveFailed, nil)
		}
		return
	}

	metrics.IncClassify("created")
	c.Set("profileId", out.Profile.ID)
	c.Set("generationDegraded", out.Degraded)
	respond.Created(c, out.Profile)
}

func (h *Handler) listProfiles(c *gin.Context) {
	profiles, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, msgListFailed, nil)
		return
	}
	respond.OK(c, profiles)
}

func (h *Handler) getProfile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusNotFound, msgNotFound, nil)
		return
	}

	profile, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, msgNotFound, nil)
		default:
			respond.Error(c, http.StatusInternalServerError, msgFetchFailed, nil)
		}
		return
	}
	c.Set("profileId", profile.ID)
	respond.OK(c, profile)
}
