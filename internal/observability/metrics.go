package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storm_radar"

// Metrics holds the Prometheus collectors for the radar snapshot service.
type Metrics struct {
	// Upstream acquisition.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error}
	FetchDuration prometheus.Histogram
	FetchBytes    prometheus.Histogram

	// Cache and refresh.
	CacheLookups   *prometheus.CounterVec // labels: result={hit,miss}
	Refreshes      prometheus.Counter
	SharedRefresh  prometheus.Counter
	SnapshotPoints prometheus.Gauge

	// Failure tiers.
	DecodeFallbacks prometheus.Counter
	HandlerFailures prometheus.Counter

	// Snapshot events.
	SnapshotEvents *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.FetchBytes,
		m.CacheLookups,
		m.Refreshes,
		m.SharedRefresh,
		m.SnapshotPoints,
		m.DecodeFallbacks,
		m.HandlerFailures,
		m.SnapshotEvents,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "MRMS snapshot downloads by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of MRMS snapshot downloads, including failures.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		FetchBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_bytes",
			Help:      "Size of downloaded MRMS snapshots.",
			Buckets:   prometheus.ExponentialBuckets(1<<10, 4, 10),
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Snapshot cache lookups by result.",
		}, []string{"result"}),
		Refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Completed snapshot refreshes that replaced the cache entry.",
		}),
		SharedRefresh: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shared_refreshes_total",
			Help:      "Snapshot queries whose refresh was shared with other queries.",
		}),
		SnapshotPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_points",
			Help:      "Number of points in the cached snapshot.",
		}),
		DecodeFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_fallbacks_total",
			Help:      "Decodes that fell back to the random generator.",
		}),
		HandlerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_failures_total",
			Help:      "Radar queries answered with the error fallback payload.",
		}),
		SnapshotEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_events_total",
			Help:      "Snapshot summary events published, by outcome.",
		}, []string{"outcome"}),
	}
}
