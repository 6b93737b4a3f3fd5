package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "richtv_queries_total",
		Help: "Total queries processed, labeled by primary category and status.",
	}, []string{"category", "status"})

	QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "richtv_query_duration_seconds",
		Help:    "End-to-end query latency.",
		Buckets: prometheus.DefBuckets,
	})

	AnswerConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "richtv_answer_confidence",
		Help:    "Distribution of validated answer confidence scores.",
		Buckets: []float64{0.1, 0.3, 0.55, 0.6, 0.7, 0.8, 0.85, 0.95, 1.0},
	})

	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "richtv_provider_errors_total",
		Help: "Provider fetch failures by source and error kind.",
	}, []string{"source", "kind"})

	RescueAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "richtv_rescue_attempts_total",
		Help: "Rescue retries by outcome.",
	}, []string{"outcome"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "richtv_cache_hits_total",
		Help: "Response cache hits.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "richtv_cache_misses_total",
		Help: "Response cache misses.",
	})
)

// Handler exposes the Prometheus scrape endpoint as a fiber handler.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
