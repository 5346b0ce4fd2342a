// Package metrics provides Prometheus metrics for the pinsight analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pinsight service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion metrics
	recordsIngested  prometheus.Counter
	recordsRejected  prometheus.Counter
	recordsDuplicate prometheus.Counter

	// Snapshot metrics - aggregation pass timings
	snapshotRebuildDuration prometheus.Histogram
	snapshotLastUnix        prometheus.Gauge
	snapshotCount           prometheus.Counter
	trackedLocations        prometheus.Gauge

	// Analysis metrics
	analysisRuns   *prometheus.CounterVec
	anomaliesFound *prometheus.CounterVec
	alertsEmitted  *prometheus.CounterVec
	earlyWarnings  prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByEndpoint *prometheus.CounterVec
	errorsByType     *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pinsight",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Register metrics on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.recordsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_ingested_total",
		Help:      "Total number of raw enrollment records accepted",
	})

	m.recordsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_rejected_total",
		Help:      "Total number of raw records rejected for missing required fields",
	})

	m.recordsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_duplicate_total",
		Help:      "Total number of duplicate date+location records observed (data quality signal)",
	})

	m.snapshotRebuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_rebuild_duration_milliseconds",
		Help:      "Time spent rebuilding the aggregated snapshot",
		Buckets:   m.histogramBuckets,
	})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_last_rebuild_timestamp_seconds",
		Help:      "Unix time of the last snapshot rebuild",
	})

	m.snapshotCount = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_rebuilds_total",
		Help:      "Total number of snapshot rebuilds",
	})

	m.trackedLocations = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_locations",
		Help:      "Number of distinct locations in the current snapshot",
	})

	m.analysisRuns = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "analysis_runs_total",
			Help:      "Total number of analysis invocations by engine",
		},
		[]string{"engine"},
	)

	m.anomaliesFound = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "anomalies_flagged_total",
			Help:      "Total number of anomalies flagged by detection method",
		},
		[]string{"method"},
	)

	m.alertsEmitted = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "alerts_emitted_total",
			Help:      "Total number of alerts emitted by severity",
		},
		[]string{"severity"},
	)

	m.earlyWarnings = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "early_warnings",
		Help:      "Number of early warnings produced by the last forecast run",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorsByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type",
		},
		[]string{"error_type", "severity"},
	)
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordIngested adds n to the accepted records counter.
func RecordIngested(n int) {
	globalManager.recordsIngested.Add(float64(n))
}

// RecordRejected adds n to the rejected records counter.
func RecordRejected(n int) {
	globalManager.recordsRejected.Add(float64(n))
}

// RecordDuplicate increments the duplicate records counter.
func RecordDuplicate() {
	globalManager.recordsDuplicate.Inc()
}

// RecordSnapshotRebuild records a snapshot rebuild and its duration in milliseconds.
func RecordSnapshotRebuild(durationMs float64) {
	globalManager.snapshotCount.Inc()
	globalManager.snapshotRebuildDuration.Observe(durationMs)
}

// UpdateSnapshotTimestamp sets the unix time of the last snapshot rebuild.
func UpdateSnapshotTimestamp(unix int64) {
	globalManager.snapshotLastUnix.Set(float64(unix))
}

// UpdateTrackedLocations sets the number of distinct locations in the snapshot.
func UpdateTrackedLocations(count int) {
	globalManager.trackedLocations.Set(float64(count))
}

// RecordAnalysisRun increments the analysis run counter for an engine.
func RecordAnalysisRun(engine string) {
	globalManager.analysisRuns.WithLabelValues(engine).Inc()
}

// RecordAnomaliesFound adds n to the anomalies counter for a detection method.
func RecordAnomaliesFound(method string, n int) {
	globalManager.anomaliesFound.WithLabelValues(method).Add(float64(n))
}

// RecordAlertEmitted increments the alert counter for a severity.
func RecordAlertEmitted(severity string) {
	globalManager.alertsEmitted.WithLabelValues(severity).Inc()
}

// UpdateEarlyWarnings sets the early warning count from the last forecast run.
func UpdateEarlyWarnings(count int) {
	globalManager.earlyWarnings.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint increments the endpoint error counter.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType increments the typed error counter.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}
