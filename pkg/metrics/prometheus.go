// Package metrics provides Prometheus metrics for the podium sync core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the podium service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Write path — one counter per (entity, outcome) so the dashboards
	// can tell applied writes from queued and refused ones.
	writes *prometheus.CounterVec

	// Offline queue and drain health
	outboxDepth   prometheus.Gauge
	replays       *prometheus.CounterVec
	drains        *prometheus.CounterVec
	drainDuration prometheus.Histogram

	// Connectivity and remote store
	connectivity  prometheus.Gauge
	remoteLatency prometheus.Histogram
	notifications *prometheus.CounterVec

	// Local mirror
	cachedEntities *prometheus.GaugeVec
	cacheRefreshes prometheus.Counter

	// Scoring / award lifecycle
	resultsPublished prometheus.Counter
	resultsRetracted prometheus.Counter
	scoredRounds     prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "sync",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.writes = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "writes_total",
			Help:      "Total write attempts by entity and outcome (applied, queued, rejected, conflict)",
		},
		[]string{"entity", "outcome"},
	)

	m.outboxDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "outbox_depth",
		Help:      "Current number of mutations waiting for replay",
	})

	m.replays = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "replays_total",
			Help:      "Total replayed queue actions by outcome (applied, dropped)",
		},
		[]string{"outcome"},
	)

	m.drains = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "drains_total",
			Help:      "Total queue drains by outcome (clean, halted)",
		},
		[]string{"outcome"},
	)

	m.drainDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "drain_duration_milliseconds",
		Help:      "Histogram of full queue drain duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.connectivity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "remote_connectivity",
		Help:      "1 when the remote store is reachable, 0 when offline",
	})

	m.remoteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "remote_latency_milliseconds",
		Help:      "Remote store round-trip latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.notifications = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "change_notifications_total",
			Help:      "Total change notifications received by channel",
		},
		[]string{"channel"},
	)

	m.cachedEntities = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cached_entities",
			Help:      "Number of entities mirrored locally by kind",
		},
		[]string{"kind"},
	)

	m.cacheRefreshes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_refreshes_total",
		Help:      "Total full cache refreshes from the remote store",
	})

	m.resultsPublished = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "results_published_total",
		Help:      "Total race results published",
	})

	m.resultsRetracted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "results_retracted_total",
		Help:      "Total race results retracted",
	})

	m.scoredRounds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scored_rounds_total",
		Help:      "Total rounds run through the scoring reducer",
	})
}

// RecordWrite counts one write attempt by entity and outcome.
func RecordWrite(entity, outcome string) {
	globalManager.writes.WithLabelValues(entity, outcome).Inc()
}

// UpdateOutboxDepth sets the current pending-mutation count.
func UpdateOutboxDepth(n int) {
	globalManager.outboxDepth.Set(float64(n))
}

// RecordReplay counts one replayed action by outcome.
func RecordReplay(outcome string) {
	globalManager.replays.WithLabelValues(outcome).Inc()
}

// RecordDrain counts one drain by outcome and records its duration.
func RecordDrain(outcome string, durationMs float64) {
	globalManager.drains.WithLabelValues(outcome).Inc()
	globalManager.drainDuration.Observe(durationMs)
}

// UpdateConnectivity sets the remote reachability gauge.
func UpdateConnectivity(online bool) {
	v := 0.0
	if online {
		v = 1.0
	}
	globalManager.connectivity.Set(v)
}

// RecordRemoteLatency records one remote round-trip in milliseconds.
func RecordRemoteLatency(latencyMs float64) {
	globalManager.remoteLatency.Observe(latencyMs)
}

// RecordNotification counts one change notification by channel.
func RecordNotification(channel string) {
	globalManager.notifications.WithLabelValues(channel).Inc()
}

// UpdateCachedEntities sets the mirrored entity count for a kind.
func UpdateCachedEntities(kind string, n int) {
	globalManager.cachedEntities.WithLabelValues(kind).Set(float64(n))
}

// RecordCacheRefresh counts one full mirror refresh.
func RecordCacheRefresh() {
	globalManager.cacheRefreshes.Inc()
}

// RecordResultsPublished counts one publish action.
func RecordResultsPublished() {
	globalManager.resultsPublished.Inc()
}

// RecordResultsRetracted counts one retract action.
func RecordResultsRetracted() {
	globalManager.resultsRetracted.Inc()
}

// RecordScoredRound counts one pass of the scoring reducer.
func RecordScoredRound() {
	globalManager.scoredRounds.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
