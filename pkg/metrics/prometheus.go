// Package metrics provides Prometheus metrics for the playerhunt service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values shared by lookup metrics.
const (
	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
)

// defaultLatencyBuckets covers local sqlite hits (sub-ms) up to several
// sequential Wikidata round-trips.
var defaultLatencyBuckets = []float64{0.5, 1, 5, 25, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // immutable defaults

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	registry       prometheus.Registerer

	// Resolution pipeline
	lookups        *prometheus.CounterVec
	lookupLatency  prometheus.Histogram
	lookupCache    *prometheus.CounterVec
	labelCacheSize prometheus.Gauge

	// Knowledge-graph client
	externalRequests *prometheus.CounterVec
	externalLatency  *prometheus.HistogramVec

	// Rooms and scoring
	submissions    *prometheus.CounterVec
	pointsAwarded  prometheus.Histogram
	localIndexRows prometheus.Gauge

	// Batch lookups
	queueLength   prometheus.Gauge
	queueRejected prometheus.Counter
	workersActive prometheus.Gauge
	jobsProcessed prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	rooms                prometheus.Gauge
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "playerhunt",
		subsystem:      "core",
		latencyBuckets: defaultLatencyBuckets,
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of metric definitions
	auto := promauto.With(m.registry)

	m.lookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookups_total",
		Help:      "Athlete lookups by strategy (alias, exact, suffix, external) and outcome",
	}, []string{"strategy", "outcome"})

	m.lookupLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookup_latency_milliseconds",
		Help:      "End-to-end latency of a full name resolution",
		Buckets:   m.latencyBuckets,
	})

	m.lookupCache = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookup_cache_total",
		Help:      "Memoized lookup cache hits and misses",
	}, []string{"outcome"})

	m.labelCacheSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "label_cache_entries",
		Help:      "Number of entity labels held in the process-wide label cache",
	})

	m.externalRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "external_requests_total",
		Help:      "Knowledge-graph API requests by operation and status",
	}, []string{"op", "status"})

	m.externalLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "external_request_duration_milliseconds",
		Help:      "Knowledge-graph API request duration by operation",
		Buckets:   m.latencyBuckets,
	}, []string{"op"})

	m.submissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_total",
		Help:      "Room submissions by result (added, duplicate, not_found)",
	}, []string{"status"})

	m.pointsAwarded = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "points_awarded",
		Help:      "Distribution of points awarded per successful add",
		Buckets:   []float64{1, 2, 3, 4, 5, 6, 7},
	})

	m.localIndexRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "local_index_rows",
		Help:      "Rows available in the local athlete index (0 when missing)",
	})

	m.queueLength = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookup_queue_length",
		Help:      "Batch lookup jobs waiting for a worker",
	})

	m.queueRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookup_queue_rejected_total",
		Help:      "Batch lookup jobs refused because the queue was full or closed",
	})

	m.workersActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookup_workers",
		Help:      "Running batch lookup workers",
	})

	m.jobsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookup_jobs_processed_total",
		Help:      "Batch lookup jobs completed by workers",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Downgraded errors by component and type",
	}, []string{"component", "type"})

	m.rooms = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rooms",
		Help:      "Number of rooms in the store",
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordLookup counts one resolution attempt for a strategy.
func RecordLookup(strategy, outcome string) {
	globalManager.lookups.WithLabelValues(strategy, outcome).Inc()
}

// RecordLookupLatency records the full resolution latency.
func RecordLookupLatency(latencyMs float64) {
	globalManager.lookupLatency.Observe(latencyMs)
}

// RecordLookupCacheHit counts a memoized lookup served from cache.
func RecordLookupCacheHit() {
	globalManager.lookupCache.WithLabelValues(OutcomeHit).Inc()
}

// RecordLookupCacheMiss counts a memoized lookup that had to resolve.
func RecordLookupCacheMiss() {
	globalManager.lookupCache.WithLabelValues(OutcomeMiss).Inc()
}

// UpdateLabelCacheSize sets the label cache entry count.
func UpdateLabelCacheSize(n int) {
	globalManager.labelCacheSize.Set(float64(n))
}

// RecordExternalRequest counts a knowledge-graph request.
func RecordExternalRequest(op, status string) {
	globalManager.externalRequests.WithLabelValues(op, status).Inc()
}

// RecordExternalLatency records a knowledge-graph request duration.
func RecordExternalLatency(op string, latencyMs float64) {
	globalManager.externalLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordSubmission counts a room submission by result.
func RecordSubmission(status string) {
	globalManager.submissions.WithLabelValues(status).Inc()
}

// RecordPointsAwarded records the points for a successful add.
func RecordPointsAwarded(points int) {
	globalManager.pointsAwarded.Observe(float64(points))
}

// UpdateLocalIndexRows sets the local index row count.
func UpdateLocalIndexRows(n int) {
	globalManager.localIndexRows.Set(float64(n))
}

// UpdateQueueLength sets the number of queued batch lookup jobs.
func UpdateQueueLength(n int) {
	globalManager.queueLength.Set(float64(n))
}

// RecordQueueRejected counts a refused batch lookup job.
func RecordQueueRejected() {
	globalManager.queueRejected.Inc()
}

// UpdateWorkerCount sets the number of running lookup workers.
func UpdateWorkerCount(n int) {
	globalManager.workersActive.Set(float64(n))
}

// RecordJobProcessed counts a completed batch lookup job.
func RecordJobProcessed() {
	globalManager.jobsProcessed.Inc()
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records a downgraded error.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateRoomCount sets the number of rooms.
func UpdateRoomCount(n int) {
	globalManager.rooms.Set(float64(n))
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
