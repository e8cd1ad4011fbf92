package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	classifyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classify_requests_total",
			Help: "Total classification requests by outcome",
		},
		[]string{"outcome"},
	)

	profilesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profiles_created_total",
			Help: "Total profiles persisted",
		},
	)

	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_generations_total",
			Help: "Total recommendation generations by outcome and degrade reason",
		},
		[]string{"outcome", "reason"},
	)

	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_generation_duration_seconds",
			Help:    "Recommendation generation latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "llm_circuit_breaker_state",
			Help: "Completion circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// IncClassify counts a classification request outcome ("created", "invalid", "not_configured", "failed").
func IncClassify(outcome string) {
	classifyRequestsTotal.WithLabelValues(outcome).Inc()
}

// IncProfileCreated counts a persisted profile.
func IncProfileCreated() {
	profilesCreatedTotal.Inc()
}

// ObserveGeneration records one generation. An empty reason means the model reply was used.
func ObserveGeneration(reason string, elapsed time.Duration) {
	outcome := "ok"
	if reason != "" {
		outcome = "fallback"
	}
	generationsTotal.WithLabelValues(outcome, reason).Inc()
	if elapsed < 0 {
		elapsed = 0
	}
	generationDuration.Observe(elapsed.Seconds())
}

// SetBreakerState records the state of a named circuit breaker.
func SetBreakerState(name string, state float64) {
	breakerState.WithLabelValues(name).Set(state)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
