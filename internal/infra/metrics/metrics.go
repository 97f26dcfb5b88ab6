package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"

	CaptureStored    = "stored"
	CaptureDuplicate = "duplicate"
	CaptureFailed    = "failed"
)

var (
	leadsCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_captured_total",
			Help: "Post-call webhooks processed, by outcome",
		},
		[]string{"outcome"},
	)

	enrichmentResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_results_total",
			Help: "Enrichment flow results, by flow and outcome",
		},
		[]string{"flow", "outcome"},
	)

	completionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genai_completion_duration_seconds",
			Help:    "Latency of completion calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"model", "status"},
	)

	completionCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genai_completion_cache_total",
			Help: "Completion cache lookups, by result",
		},
		[]string{"result"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

func RecordLeadCaptured(outcome string) {
	leadsCaptured.WithLabelValues(outcome).Inc()
}

func RecordEnrichment(flow, outcome string) {
	enrichmentResults.WithLabelValues(flow, outcome).Inc()
}

func ObserveCompletion(model, status string, d time.Duration) {
	completionLatency.WithLabelValues(model, status).Observe(d.Seconds())
}

func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	completionCache.WithLabelValues(result).Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
