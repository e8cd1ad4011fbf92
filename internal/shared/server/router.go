package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classify-backend/internal/profiles"
	"classify-backend/internal/services/health"
	"classify-backend/internal/shared/config"
	"classify-backend/internal/shared/metrics"
	"classify-backend/internal/shared/server/middleware"
	"classify-backend/internal/shared/server/respond"
)

const classifyRateGroup = "classify"

// RouterDeps holds the handlers the router serves.
type RouterDeps struct {
	Config         config.Config
	ProfileHandler *profiles.Handler
	HealthService  *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigins),
	)

	healthSvc := deps.HealthService
	if healthSvc == nil {
		healthSvc = health.NewService(deps.Config.OpenAIConfigured())
	}
	healthHandler := func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	}
	r.GET("/health", healthHandler)
	r.GET("/health/", healthHandler)
	r.GET("/metrics", metrics.Handler())

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.RegisterRoutes(r, classifyLimiter(deps.Config)...)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "Not found", nil)
	})
	return r
}

// classifyLimiter returns the per-client limiter for POST /classify/, or nothing when disabled.
func classifyLimiter(cfg config.Config) []gin.HandlerFunc {
	if cfg.ClassifyRatePerSec <= 0 {
		return nil
	}
	burst := cfg.ClassifyRateBurst
	if burst <= 0 {
		burst = 1
	}
	return []gin.HandlerFunc{middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			classifyRateGroup: {Rate: cfg.ClassifyRatePerSec, Burst: burst},
		},
		DefaultGroup: classifyRateGroup,
	})}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
