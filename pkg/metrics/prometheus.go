// Package metrics provides Prometheus metrics for the scoregraph query engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Query engine metrics
	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec

	// Store traversal metrics
	traversalsTotal   prometheus.Counter
	traversalLatency  prometheus.Histogram
	topicChecksFailed prometheus.Counter

	// Team formation metrics
	teamsFormed  prometheus.Counter
	teamSetSizes prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scoregraph",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.queriesTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queries_total",
		Help:      "Total engine invocations by intent and outcome",
	}, []string{"intent", "status"})

	m.queryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "query_duration_ms",
		Help:      "End-to-end engine invocation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"intent"})

	m.traversalsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "traversals_total",
		Help:      "Total graph traversals issued to the store",
	})

	m.traversalLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "traversal_latency_ms",
		Help:      "Store round-trip latency per traversal in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.topicChecksFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "topic_checks_failed_total",
		Help:      "Topic existence checks that found no matching topic",
	})

	m.teamsFormed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams_formed_total",
		Help:      "Total study teams produced by team formation",
	})

	m.teamSetSizes = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "team_set_size",
		Help:      "Number of students partitioned per team formation call",
		Buckets:   []float64{1, 2, 4, 6, 8, 12, 16},
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})
}

// RecordQuery counts one engine invocation with its outcome.
func RecordQuery(intent, status string) {
	globalManager.queriesTotal.WithLabelValues(intent, status).Inc()
}

// RecordQueryDuration records the end-to-end latency of an invocation.
func RecordQueryDuration(intent string, ms float64) {
	globalManager.queryDuration.WithLabelValues(intent).Observe(ms)
}

// RecordTraversal counts one store round-trip and its latency.
func RecordTraversal(ms float64) {
	globalManager.traversalsTotal.Inc()
	globalManager.traversalLatency.Observe(ms)
}

// RecordTopicCheckFailed counts an existence check that found no topic.
func RecordTopicCheckFailed() {
	globalManager.topicChecksFailed.Inc()
}

// RecordTeamsFormed records a completed team formation call that partitioned
// the given number of students into the given number of teams.
func RecordTeamsFormed(teams, students int) {
	globalManager.teamsFormed.Add(float64(teams))
	globalManager.teamSetSizes.Observe(float64(students))
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}

// GetRegistry returns the registry backing the global manager, for use with
// promhttp handlers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
