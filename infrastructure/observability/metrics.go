// Package observability provides the Prometheus collector, HTTP
// instrumentation middleware, and OpenTelemetry tracing setup.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Global collector instance for singleton pattern
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Taxonomy metrics
	RelationshipsAdded     prometheus.Counter
	RelationshipRejections *prometheus.CounterVec
	CyclesDetected         prometheus.Counter

	// Review and pipeline metrics
	SuggestionsReviewed *prometheus.CounterVec
	PipelineRuns        prometheus.Counter
}

// NewCollector creates a new metrics collector with the given namespace.
// Repeated calls return the same instance so tests and Lambda warm starts
// never hit duplicate registration.
func NewCollector(namespace string) *Collector {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	// Own registry, not the default one, so the /metrics endpoint only
	// exposes what we register here
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	relationshipsAdded := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationships_added_total",
			Help:      "Total number of parent-child relationships committed",
		},
	)

	relationshipRejections := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationship_rejections_total",
			Help:      "Total number of rejected hierarchy edits by reason",
		},
		[]string{"reason"},
	)

	cyclesDetected := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_detected_total",
			Help:      "Total number of hierarchy edits rejected because they would close a cycle",
		},
	)

	suggestionsReviewed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_reviewed_total",
			Help:      "Total number of normalization suggestions reviewed by outcome",
		},
		[]string{"outcome"},
	)

	pipelineRuns := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of normalization pipeline runs started",
		},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		relationshipsAdded,
		relationshipRejections,
		cyclesDetected,
		suggestionsReviewed,
		pipelineRuns,
	)

	globalCollector = &Collector{
		registry:               registry,
		HTTPRequests:           httpRequests,
		HTTPDuration:           httpDuration,
		RelationshipsAdded:     relationshipsAdded,
		RelationshipRejections: relationshipRejections,
		CyclesDetected:         cyclesDetected,
		SuggestionsReviewed:    suggestionsReviewed,
		PipelineRuns:           pipelineRuns,
	}

	return globalCollector
}

// ResetForTesting resets the global collector so the next NewCollector call
// builds a fresh registry
func ResetForTesting() {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()
	globalCollector = nil
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}
