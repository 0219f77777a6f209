// Package metrics provides Prometheus metrics for the skillview pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for skillview.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Ingest
	contributionsReceived  prometheus.Counter
	contributionsDuplicate prometheus.Counter
	contributionsScored    prometheus.Counter
	scoreRecords           *prometheus.CounterVec
	scorerErrors           *prometheus.CounterVec
	scoringLatency         prometheus.Histogram

	// Queue and workers
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	workerActiveCount prometheus.Gauge

	// Store
	storeRecords prometheus.Gauge

	// Analysis
	analysisDuration        *prometheus.HistogramVec
	contributorUniverse     prometheus.Gauge
	zeroVariancePopulations *prometheus.CounterVec
	partitionsProduced      prometheus.Counter
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
		namespace:        "skillview",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.contributionsReceived = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "contributions_received_total",
		Help:        "Total number of contributions read from sources",
		ConstLabels: constLabels,
	})

	m.contributionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "contributions_duplicate_total",
		Help:        "Total number of contributions skipped as duplicates",
		ConstLabels: constLabels,
	})

	m.contributionsScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "contributions_scored_total",
		Help:        "Total number of contributions run through all scorers",
		ConstLabels: constLabels,
	})

	m.scoreRecords = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "score_records_total",
		Help:        "Total number of score records produced per originator",
		ConstLabels: constLabels,
	}, []string{"originator"})

	m.scorerErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scorer_errors_total",
		Help:        "Total number of scorer failures per originator",
		ConstLabels: constLabels,
	}, []string{"originator"})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scoring_latency_seconds",
		Help:        "Time spent scoring one contribution with every scorer",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_size",
		Help:        "Current number of contributions waiting in the queue",
		ConstLabels: constLabels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_capacity",
		Help:        "Maximum number of contributions the queue can hold",
		ConstLabels: constLabels,
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "workers_active",
		Help:        "Number of scoring workers currently running",
		ConstLabels: constLabels,
	})

	m.storeRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_records",
		Help:        "Number of score records held by the store",
		ConstLabels: constLabels,
	})

	m.analysisDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "analysis_stage_duration_seconds",
		Help:        "Duration of each analysis stage",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"stage"})

	m.contributorUniverse = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "contributor_universe_size",
		Help:        "Number of distinct contributors in the last analysis",
		ConstLabels: constLabels,
	})

	m.zeroVariancePopulations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "zero_variance_populations_total",
		Help:        "Populations normalized to zero because their variance was undefined or zero",
		ConstLabels: constLabels,
	}, []string{"pass"})

	m.partitionsProduced = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "partitions_produced_total",
		Help:        "Total number of partitions produced by normalized queries",
		ConstLabels: constLabels,
	})
}

// Package-level helpers record into the global manager.

func RecordContributionReceived() {
	if globalManager != nil && globalManager.enabled {
		globalManager.contributionsReceived.Inc()
	}
}

func RecordContributionDuplicate() {
	if globalManager != nil && globalManager.enabled {
		globalManager.contributionsDuplicate.Inc()
	}
}

func RecordContributionScored() {
	if globalManager != nil && globalManager.enabled {
		globalManager.contributionsScored.Inc()
	}
}

func RecordScoreRecord(originator string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.scoreRecords.WithLabelValues(originator).Inc()
	}
}

func RecordScorerError(originator string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.scorerErrors.WithLabelValues(originator).Inc()
	}
}

func RecordScoringLatency(seconds float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.scoringLatency.Observe(seconds)
	}
}

func UpdateQueueSize(size int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

func UpdateQueueCapacity(capacity int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

func UpdateWorkerActiveCount(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.workerActiveCount.Set(float64(count))
	}
}

func UpdateStoreRecords(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.storeRecords.Set(float64(count))
	}
}

func RecordAnalysisStage(stage string, seconds float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.analysisDuration.WithLabelValues(stage).Observe(seconds)
	}
}

func UpdateContributorUniverse(size int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.contributorUniverse.Set(float64(size))
	}
}

func RecordZeroVariance(pass string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.zeroVariancePopulations.WithLabelValues(pass).Inc()
	}
}

func RecordPartitions(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.partitionsProduced.Add(float64(count))
	}
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
