// Package metrics provides Prometheus metrics for the pairrank rating service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns all Prometheus instruments for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingest metrics
	comparisonsAccepted  prometheus.Counter
	comparisonsDuplicate prometheus.Counter
	comparisonsRejected  prometheus.Counter

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount   prometheus.Gauge
	workerLatency prometheus.Histogram
	workerErrors  prometheus.Counter

	// Estimation metrics
	recomputeTotal        prometheus.Counter
	recomputeNonConverged prometheus.Counter
	recomputeDuration     prometheus.Histogram
	recomputeIterations   prometheus.Gauge
	incrementalUpdates    prometheus.Counter
	updatesSinceRecompute prometheus.Gauge
	degenerateItems       prometheus.Gauge

	// Store metrics
	itemsTracked    prometheus.Gauge
	snapshotRebuild prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pairrank",
		subsystem:        "rating",
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

	m.comparisonsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparisons_accepted_total",
		Help:      "Total number of comparisons accepted for processing",
	})
	m.comparisonsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparisons_duplicate_total",
		Help:      "Total number of resubmitted comparisons dropped by the deduper",
	})
	m.comparisonsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparisons_rejected_total",
		Help:      "Total number of comparisons rejected by validation",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the comparison queue",
	})
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the comparison queue",
	})
	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue fill ratio between 0 and 1",
	})
	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total number of comparisons enqueued",
	})
	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total number of comparisons handed to workers",
	})
	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of enqueue attempts that failed (full or closed)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of comparison workers",
	})
	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_latency_milliseconds",
		Help:      "Histogram of per-comparison processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of comparison processing failures",
	})

	m.recomputeTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_total",
		Help:      "Total number of full Bradley-Terry recomputations",
	})
	m.recomputeNonConverged = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_nonconverged_total",
		Help:      "Full recomputations that hit the iteration limit before the tolerance",
	})
	m.recomputeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_duration_seconds",
		Help:      "Histogram of full recomputation wall time in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
	m.recomputeIterations = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_iterations",
		Help:      "MM sweeps used by the most recent full recomputation",
	})
	m.incrementalUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "incremental_updates_total",
		Help:      "Total number of incremental score updates applied",
	})
	m.updatesSinceRecompute = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "updates_since_recompute",
		Help:      "Incremental updates accumulated since the last full recompute",
	})
	m.degenerateItems = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "degenerate_items",
		Help:      "Items with only wins or only losses in the latest recompute",
	})

	m.itemsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "items_tracked",
		Help:      "Total number of items with a rating",
	})
	m.snapshotRebuild = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_rebuild_milliseconds",
		Help:      "Histogram of ranking snapshot rebuild time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// RecordComparisonAccepted increments the accepted comparisons counter.
func RecordComparisonAccepted() {
	globalManager.comparisonsAccepted.Inc()
}

// RecordComparisonDuplicate increments the duplicate comparisons counter.
func RecordComparisonDuplicate() {
	globalManager.comparisonsDuplicate.Inc()
}

// RecordComparisonRejected increments the rejected comparisons counter.
func RecordComparisonRejected() {
	globalManager.comparisonsRejected.Inc()
}

// UpdateQueueSize sets the queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization gauge.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the worker count gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerLatency records per-comparison processing latency.
func RecordWorkerLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordRecompute records the outcome of one full recomputation.
func RecordRecompute(seconds float64, iterations int, converged bool) {
	globalManager.recomputeTotal.Inc()
	globalManager.recomputeDuration.Observe(seconds)
	globalManager.recomputeIterations.Set(float64(iterations))
	if !converged {
		globalManager.recomputeNonConverged.Inc()
	}
}

// RecordIncrementalUpdate increments the incremental update counter.
func RecordIncrementalUpdate() {
	globalManager.incrementalUpdates.Inc()
}

// UpdateUpdatesSinceRecompute sets the drift counter gauge.
func UpdateUpdatesSinceRecompute(count int) {
	globalManager.updatesSinceRecompute.Set(float64(count))
}

// UpdateDegenerateItems sets the one-sided item gauge.
func UpdateDegenerateItems(count int) {
	globalManager.degenerateItems.Set(float64(count))
}

// UpdateItemsTracked sets the rated item gauge.
func UpdateItemsTracked(count int) {
	globalManager.itemsTracked.Set(float64(count))
}

// RecordSnapshotRebuild records a ranking snapshot rebuild duration.
func RecordSnapshotRebuild(latencyMs float64) {
	globalManager.snapshotRebuild.Observe(latencyMs)
}

// Handler exposes the custom registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// GetRegistry returns the custom Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
