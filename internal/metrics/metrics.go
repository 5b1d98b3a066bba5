package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IndexerCallsTotal tracks HTTP calls to the remote indexer per endpoint
	IndexerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streakwatch_indexer_calls_total",
			Help: "Total number of HTTP calls to the indexer",
		},
		[]string{"endpoint", "outcome"},
	)

	// EventsParsedTotal tracks successfully decoded domain events
	EventsParsedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streakwatch_events_parsed_total",
			Help: "Total number of raw records decoded into domain events",
		},
		[]string{"type"},
	)

	// EventsDroppedTotal tracks raw records dropped during decode
	EventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "streakwatch_events_dropped_total",
			Help: "Total number of raw records dropped as malformed or unknown",
		},
	)

	// CacheHitsTotal tracks cache reads that returned valid entries
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "streakwatch_cache_hits_total",
			Help: "Total number of cache reads served from a valid entry",
		},
	)

	// CacheMissesTotal tracks cache reads that missed or hit expired entries
	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "streakwatch_cache_misses_total",
			Help: "Total number of cache reads that missed",
		},
	)

	// SyncDuration tracks wall time of a single sync invocation
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "streakwatch_sync_duration_seconds",
			Help:    "Duration of one sync invocation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ChainHeight tracks the last observed ledger block height
	ChainHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "streakwatch_chain_height",
			Help: "Last observed ledger block height",
		},
	)

	// FullySynced reports whether the event log is fully consumed (1) or not (0)
	FullySynced = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "streakwatch_fully_synced",
			Help: "Whether the event log is fully consumed",
		},
	)
)
