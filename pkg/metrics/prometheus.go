// Package metrics provides Prometheus metrics for the punchclock service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Refresh pipeline
	refreshTotal    *prometheus.CounterVec
	refreshFailures *prometheus.CounterVec
	refreshLatency  *prometheus.HistogramVec
	refreshRejected *prometheus.CounterVec

	// Snapshot
	snapshotEvents      prometheus.Gauge
	snapshotUsers       prometheus.Gauge
	snapshotPublished   prometheus.Counter
	snapshotDroppedOld  prometheus.Counter
	snapshotLastPublish prometheus.Gauge

	// Reports
	reportRenderLatency prometheus.Histogram
	reportRenderErrors  prometheus.Counter
	reportCacheHits     prometheus.Counter
	reportCacheMisses   prometheus.Counter
	invalidPeriods      prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec

	// Queue and workers
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueRejected    *prometheus.CounterVec
	workerCount      prometheus.Gauge
	workerBusy       prometheus.Gauge
	workerJobLatency prometheus.Histogram

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry avoids the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "punchclock",
		subsystem:        "attendance",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
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

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.refreshTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_total",
		Help: "Terminal refreshes attempted, by kind",
	}, []string{"kind"})
	m.refreshFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_failures_total",
		Help: "Terminal refreshes that failed, by kind",
	}, []string{"kind"})
	m.refreshLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "refresh_latency_milliseconds",
		Help:    "Terminal round trip plus snapshot publish latency in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"kind"})
	m.refreshRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_rejected_total",
		Help: "Refresh requests rejected before reaching the terminal, by reason",
	}, []string{"reason"})

	m.snapshotEvents = m.gauge("snapshot_events", "Clock events held by the current snapshot")
	m.snapshotUsers = m.gauge("snapshot_users", "Users held by the current snapshot directory")
	m.snapshotPublished = m.counter("snapshot_published_total", "Snapshots published")
	m.snapshotDroppedOld = m.counter("snapshot_events_dropped_total", "Fetched events dropped by the retention window")
	m.snapshotLastPublish = m.gauge("snapshot_last_publish_unix", "Unix time of the last snapshot publish")

	m.reportRenderLatency = m.histogram("report_render_latency_milliseconds", "PDF report render latency in milliseconds")
	m.reportRenderErrors = m.counter("report_render_errors_total", "PDF report render failures")
	m.reportCacheHits = m.counter("report_cache_hits_total", "Report requests served from cache")
	m.reportCacheMisses = m.counter("report_cache_misses_total", "Report requests that required a render")
	m.invalidPeriods = m.counter("invalid_period_total", "Requests with an unrecognized period token")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRateLimited = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_rate_limited_total",
		Help: "HTTP requests rejected by the rate limiter",
	}, []string{"endpoint"})

	m.queueSize = m.gauge("queue_size", "Refresh jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Refresh queue capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Refresh jobs accepted by the queue")
	m.queueRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_rejected_total",
		Help: "Refresh jobs rejected by the queue, by reason",
	}, []string{"reason"})
	m.workerCount = m.gauge("worker_count", "Refresh workers running")
	m.workerBusy = m.gauge("worker_busy", "Refresh workers currently executing a job")
	m.workerJobLatency = m.histogram("worker_job_latency_milliseconds", "Refresh job execution time in milliseconds")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds")
}

func enabled() bool { return globalManager != nil && globalManager.enabled }

// RecordRefresh counts a refresh attempt and its latency.
func RecordRefresh(kind string, latencyMs float64, failed bool) {
	if !enabled() {
		return
	}
	globalManager.refreshTotal.WithLabelValues(kind).Inc()
	globalManager.refreshLatency.WithLabelValues(kind).Observe(latencyMs)
	if failed {
		globalManager.refreshFailures.WithLabelValues(kind).Inc()
	}
}

// RecordRefreshRejected counts a refresh that never reached the terminal.
func RecordRefreshRejected(reason string) {
	if enabled() {
		globalManager.refreshRejected.WithLabelValues(reason).Inc()
	}
}

// UpdateSnapshotSize sets the event and user gauges.
func UpdateSnapshotSize(events, users int) {
	if !enabled() {
		return
	}
	globalManager.snapshotEvents.Set(float64(events))
	globalManager.snapshotUsers.Set(float64(users))
}

// RecordSnapshotPublished counts a publish and stamps its time.
func RecordSnapshotPublished(unix int64) {
	if !enabled() {
		return
	}
	globalManager.snapshotPublished.Inc()
	globalManager.snapshotLastPublish.Set(float64(unix))
}

// RecordRetentionDropped counts fetched events outside the retention window.
func RecordRetentionDropped(n int) {
	if enabled() && n > 0 {
		globalManager.snapshotDroppedOld.Add(float64(n))
	}
}

// RecordReportRender observes a report render.
func RecordReportRender(latencyMs float64, failed bool) {
	if !enabled() {
		return
	}
	globalManager.reportRenderLatency.Observe(latencyMs)
	if failed {
		globalManager.reportRenderErrors.Inc()
	}
}

// RecordReportCache counts a report cache lookup.
func RecordReportCache(hit bool) {
	if !enabled() {
		return
	}
	if hit {
		globalManager.reportCacheHits.Inc()
		return
	}
	globalManager.reportCacheMisses.Inc()
}

// RecordInvalidPeriod counts a period token that fell back to "all".
func RecordInvalidPeriod() {
	if enabled() {
		globalManager.invalidPeriods.Inc()
	}
}

// RecordHTTPRequest records a finished HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !enabled() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(endpoint string) {
	if enabled() {
		globalManager.httpRateLimited.WithLabelValues(endpoint).Inc()
	}
}

// UpdateQueueSize sets the queue backlog gauge.
func UpdateQueueSize(size int) {
	if enabled() {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	if enabled() {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	if enabled() {
		globalManager.queueEnqueued.Inc()
	}
}

// RecordQueueRejected counts a rejected job.
func RecordQueueRejected(reason string) {
	if enabled() {
		globalManager.queueRejected.WithLabelValues(reason).Inc()
	}
}

// UpdateWorkerCount sets the worker gauge.
func UpdateWorkerCount(count int) {
	if enabled() {
		globalManager.workerCount.Set(float64(count))
	}
}

// AddWorkerBusy adjusts the busy worker gauge by delta.
func AddWorkerBusy(delta int) {
	if enabled() {
		globalManager.workerBusy.Add(float64(delta))
	}
}

// RecordWorkerJobLatency observes job execution time.
func RecordWorkerJobLatency(latencyMs float64) {
	if enabled() {
		globalManager.workerJobLatency.Observe(latencyMs)
	}
}

// UpdateSystemMemoryUsage sets the heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if enabled() {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if enabled() {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	if enabled() {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. Call it before serving; values recorded earlier are discarded.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	opts = append(opts, WithPrometheusRegistry(registry))
	customRegistry = registry
	globalManager = NewManager(opts...)
}

// GetRegistry returns the registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
