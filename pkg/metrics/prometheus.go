// Package metrics provides Prometheus metrics for the xptrack service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Aggregation outcomes used as label values.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Manager manages all Prometheus metrics for the xptrack service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	sizeBuckets      []float64
	registry         prometheus.Registerer

	// Ingestion
	snapshotsIngested prometheus.Counter
	snapshotsReplaced prometheus.Counter
	snapshotsEvicted  prometheus.Counter
	unknownFields     prometheus.Counter

	// Aggregation
	aggregations        *prometheus.CounterVec
	aggregationLatency  prometheus.Histogram
	aggregationSnapshot prometheus.Histogram
	gainsLatency        prometheus.Histogram

	// Repository
	accountsTotal           prometheus.Gauge
	snapshotsTotal          prometheus.Gauge
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
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
		namespace:        "xptrack",
		subsystem:        "progress",
		histogramBuckets: prometheus.DefBuckets,
		sizeBuckets:      prometheus.ExponentialBuckets(1, 2, 12),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.snapshotsIngested = m.counter("snapshots_ingested_total", "Total number of snapshots stored")
	m.snapshotsReplaced = m.counter("snapshots_replaced_total", "Total number of snapshots that replaced one with the same date")
	m.snapshotsEvicted = m.counter("snapshots_evicted_total", "Total number of snapshots dropped by the retention cap")
	m.unknownFields = m.counter("unknown_fields_total", "Total number of ingested fields that match no tracked skill")

	m.aggregations = m.counterVec("aggregations_total", "Total number of range aggregations by outcome", "outcome")
	m.aggregationLatency = m.histogram("aggregation_latency_milliseconds", "Range aggregation latency in milliseconds", m.histogramBuckets)
	m.aggregationSnapshot = m.histogram("aggregation_snapshots", "Number of snapshots per aggregated range", m.sizeBuckets)
	m.gainsLatency = m.histogram("gains_latency_milliseconds", "Gains leaderboard computation latency in milliseconds", m.histogramBuckets)

	m.accountsTotal = m.gauge("accounts_total", "Number of accounts with stored history")
	m.snapshotsTotal = m.gauge("snapshots_total", "Number of snapshots held across all accounts")
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "Repository write latency in milliseconds", m.histogramBuckets)
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Repository window query latency in milliseconds", m.histogramBuckets)

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Allocated heap memory in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds", m.histogramBuckets)
}

// RecordSnapshotIngested increments the stored snapshots counter.
func RecordSnapshotIngested() { globalManager.snapshotsIngested.Inc() }

// RecordSnapshotReplaced increments the replaced snapshots counter.
func RecordSnapshotReplaced() { globalManager.snapshotsReplaced.Inc() }

// RecordSnapshotsEvicted adds n to the evicted snapshots counter.
func RecordSnapshotsEvicted(n int) {
	if n > 0 {
		globalManager.snapshotsEvicted.Add(float64(n))
	}
}

// RecordUnknownFields adds n to the unknown fields counter.
func RecordUnknownFields(n int) {
	if n > 0 {
		globalManager.unknownFields.Add(float64(n))
	}
}

// RecordAggregation records one aggregation with its outcome, latency and size.
func RecordAggregation(outcome string, latencyMs float64, snapshots int) {
	globalManager.aggregations.WithLabelValues(outcome).Inc()
	globalManager.aggregationLatency.Observe(latencyMs)
	globalManager.aggregationSnapshot.Observe(float64(snapshots))
}

// RecordGainsLatency records gains leaderboard latency in milliseconds.
func RecordGainsLatency(latencyMs float64) { globalManager.gainsLatency.Observe(latencyMs) }

// UpdateAccountsTotal sets the number of accounts.
func UpdateAccountsTotal(count int) { globalManager.accountsTotal.Set(float64(count)) }

// UpdateSnapshotsTotal sets the number of stored snapshots.
func UpdateSnapshotsTotal(count int) { globalManager.snapshotsTotal.Set(float64(count)) }

// RecordRepositoryUpdateLatency records repository write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository query latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
