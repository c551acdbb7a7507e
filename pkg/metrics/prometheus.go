// Package metrics provides Prometheus metrics for the motion conversion
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns all Prometheus metrics for the conversion pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Batch outcome metrics.
	sequencesProcessed prometheus.Counter
	sequencesFailed    prometheus.Counter
	warnings           *prometheus.CounterVec
	framesIn           prometheus.Counter
	framesOut          prometheus.Counter

	// Stage performance metrics.
	stageLatency    *prometheus.HistogramVec
	sequenceLatency prometheus.Histogram

	// Queue and worker health.
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	workerCount      prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager()
}

// NewManager creates a metrics manager on its own registry, keeping the
// default Go collectors out of the scrape output.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mocap",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.sequencesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sequences_processed_total",
		Help:      "Total number of motion sequences converted successfully",
	})

	m.sequencesFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sequences_failed_total",
		Help:      "Total number of motion sequences that failed conversion",
	})

	m.warnings = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "warnings_total",
			Help:      "Total warning-class conditions observed, by kind",
		},
		[]string{"kind"},
	)

	m.framesIn = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_in_total",
		Help:      "Total motion frames read from source bundles",
	})

	m.framesOut = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_out_total",
		Help:      "Total motion frames written after resampling",
	})

	m.stageLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_latency_milliseconds",
			Help:      "Per-stage processing latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"stage"},
	)

	m.sequenceLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sequence_latency_milliseconds",
		Help:      "End-to-end per-sequence conversion latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued conversion jobs",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum conversion job queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization ratio (current size / capacity)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of active conversion workers",
	})
}

// Package-level helpers against the global manager.

// RecordSequenceProcessed increments the success counter.
func RecordSequenceProcessed() {
	globalManager.sequencesProcessed.Inc()
}

// RecordSequenceFailed increments the failure counter.
func RecordSequenceFailed() {
	globalManager.sequencesFailed.Inc()
}

// RecordWarning counts one warning-class condition of the given kind.
func RecordWarning(kind string) {
	globalManager.warnings.WithLabelValues(kind).Inc()
}

// RecordFrames accounts frames read and written for one sequence.
func RecordFrames(in, out int) {
	globalManager.framesIn.Add(float64(in))
	globalManager.framesOut.Add(float64(out))
}

// RecordStageLatency observes one stage's latency in milliseconds.
func RecordStageLatency(stage string, latencyMs float64) {
	globalManager.stageLatency.WithLabelValues(stage).Observe(latencyMs)
}

// RecordSequenceLatency observes one sequence's end-to-end latency.
func RecordSequenceLatency(latencyMs float64) {
	globalManager.sequenceLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue depth gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio gauge.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// UpdateWorkerCount sets the active worker gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// Handler returns an HTTP handler exposing the global registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(globalManager.registry, promhttp.HandlerOpts{})
}

// GetRegistry returns the global registry, mainly for tests.
func GetRegistry() *prometheus.Registry {
	return globalManager.registry
}
