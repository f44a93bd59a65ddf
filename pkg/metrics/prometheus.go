// Package metrics provides Prometheus metrics for the analytics pipeline
// service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metric name parts.
const (
	defaultNamespace = "insight"
	defaultSubsystem = "pipeline"
)

// Manager owns every Prometheus collector the service registers.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Stage fetch metrics
	stageFetches      *prometheus.CounterVec
	stageFetchErrors  *prometheus.CounterVec
	stageFetchLatency *prometheus.HistogramVec

	// Cache metrics
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter
	cacheEntries   prometheus.Gauge
	staleDiscards  prometheus.Counter

	// Bootstrap metrics
	bootstrapApplied prometheus.Counter

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerErrors            prometheus.Counter
	workerProcessingLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error breakdowns
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var (
	globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager
	managerOnce   sync.Once
)

// NewManager builds a Manager and registers all collectors on its registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)
	opt := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		}
	}
	gaugeOpt := func(name, help string) prometheus.GaugeOpts {
		return prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		}
	}
	histOpt := func(name, help string) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
			Buckets: m.histogramBuckets,
		}
	}

	m.stageFetches = factory.NewCounterVec(opt("stage_fetches_total", "Completed stage fetches."), []string{"stage"})
	m.stageFetchErrors = factory.NewCounterVec(opt("stage_fetch_errors_total", "Failed stage fetches."), []string{"stage"})
	m.stageFetchLatency = factory.NewHistogramVec(histOpt("stage_fetch_latency_ms", "Stage fetch latency in milliseconds."), []string{"stage"})

	m.cacheHits = factory.NewCounter(opt("cache_hits_total", "Cache lookups that found an entry."))
	m.cacheMisses = factory.NewCounter(opt("cache_misses_total", "Cache lookups that found nothing."))
	m.cacheEvictions = factory.NewCounter(opt("cache_evictions_total", "Entries evicted by the age sweep."))
	m.cacheEntries = factory.NewGauge(gaugeOpt("cache_entries", "Current cache entry count."))
	m.staleDiscards = factory.NewCounter(opt("stale_discards_total", "Responses discarded because their key was superseded."))

	m.bootstrapApplied = factory.NewCounter(opt("bootstrap_applied_total", "Default dataset selections applied."))

	m.queueSize = factory.NewGauge(gaugeOpt("queue_size", "Jobs currently queued."))
	m.queueCapacity = factory.NewGauge(gaugeOpt("queue_capacity", "Configured queue capacity."))
	m.queueUtilization = factory.NewGauge(gaugeOpt("queue_utilization", "Queue fill ratio."))
	m.queueEnqueues = factory.NewCounter(opt("queue_enqueues_total", "Jobs accepted by the queue."))
	m.queueDequeues = factory.NewCounter(opt("queue_dequeues_total", "Jobs handed to workers."))
	m.queueEnqueueErrors = factory.NewCounter(opt("queue_enqueue_errors_total", "Jobs refused by the queue."))

	m.workerCount = factory.NewGauge(gaugeOpt("worker_count", "Configured fetch worker count."))
	m.workerErrors = factory.NewCounter(opt("worker_errors_total", "Worker-level processing errors."))
	m.workerProcessingLatency = factory.NewHistogram(histOpt("worker_processing_latency_ms", "Per-job worker latency in milliseconds."))

	m.httpRequests = factory.NewCounterVec(opt("http_requests_total", "HTTP requests served."), []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(histOpt("http_request_duration_ms", "HTTP request duration in milliseconds."), []string{"endpoint", "method", "status"})

	m.errorsByComponent = factory.NewCounterVec(opt("errors_by_component_total", "Errors broken down by component and reason."), []string{"component", "reason"})
	m.errorsByEndpoint = factory.NewCounterVec(opt("errors_by_endpoint_total", "HTTP errors broken down by endpoint."), []string{"endpoint", "method", "error_type"})
	m.errorsByType = factory.NewCounterVec(opt("errors_by_type_total", "Errors broken down by type and severity."), []string{"error_type", "severity"})

	m.systemMemoryUsage = factory.NewGauge(gaugeOpt("system_memory_bytes", "Allocated heap bytes."))
	m.systemGoroutineCount = factory.NewGauge(gaugeOpt("system_goroutines", "Current goroutine count."))
	m.systemGCPauseTime = factory.NewHistogram(histOpt("system_gc_pause_ms", "Average GC pause in milliseconds."))

	return m
}

// Registry returns the manager's registry for serving /healthz.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

func get() *Manager {
	managerOnce.Do(func() {
		if globalManager == nil {
			globalManager = NewManager()
		}
	})
	return globalManager
}

// Init replaces the global manager. Call before any Record*/Update* use;
// later calls to those helpers hit the manager installed here.
func Init(opts ...Option) {
	globalManager = NewManager(opts...)
	managerOnce = sync.Once{}
}

// GetRegistry returns the global manager's registry.
func GetRegistry() *prometheus.Registry { return get().Registry() }

// Stage fetch helpers.

func RecordStageFetch(stage string) { get().stageFetches.WithLabelValues(stage).Inc() }
func RecordStageFetchError(stage string) {
	get().stageFetchErrors.WithLabelValues(stage).Inc()
}
func RecordStageFetchLatency(stage string, ms float64) {
	get().stageFetchLatency.WithLabelValues(stage).Observe(ms)
}

// Cache helpers.

func RecordCacheHit()          { get().cacheHits.Inc() }
func RecordCacheMiss()         { get().cacheMisses.Inc() }
func RecordCacheEviction()     { get().cacheEvictions.Inc() }
func UpdateCacheEntries(n int) { get().cacheEntries.Set(float64(n)) }
func RecordStaleDiscard()      { get().staleDiscards.Inc() }

// Bootstrap helpers.

func RecordBootstrapApplied() { get().bootstrapApplied.Inc() }

// Queue helpers.

func UpdateQueueSize(n int)            { get().queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int)        { get().queueCapacity.Set(float64(n)) }
func UpdateQueueUtilization(r float64) { get().queueUtilization.Set(r) }
func RecordQueueEnqueue()              { get().queueEnqueues.Inc() }
func RecordQueueDequeue()              { get().queueDequeues.Inc() }
func RecordQueueEnqueueError()         { get().queueEnqueueErrors.Inc() }

// Worker helpers.

func UpdateWorkerCount(n int) { get().workerCount.Set(float64(n)) }
func RecordWorkerError()      { get().workerErrors.Inc() }
func RecordWorkerProcessingLatency(ms float64) {
	get().workerProcessingLatency.Observe(ms)
}

// HTTP helpers.

func RecordHTTPRequest(endpoint, method, status string) {
	get().httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	get().httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// Error breakdown helpers.

func RecordErrorByComponent(component, reason string) {
	get().errorsByComponent.WithLabelValues(component, reason).Inc()
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	get().errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

func RecordErrorByType(errorType, severity string) {
	get().errorsByType.WithLabelValues(errorType, severity).Inc()
}

// System helpers.

func UpdateSystemMemoryUsage(bytes uint64) {
	get().systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(n int) {
	get().systemGoroutineCount.Set(float64(n))
}

func RecordSystemGCPauseTime(ms float64) { get().systemGCPauseTime.Observe(ms) }
