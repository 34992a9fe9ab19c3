// # internal/shared/observability/metrics.go
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hlsense_query_seconds",
		Help:    "Time spent answering one analyzer query.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	ParseTreeLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlsense_parse_tree_loads_total",
		Help: "Total number of cross-module parse tree loads, by result.",
	}, []string{"result"})

	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hlsense_parsing_seconds",
		Help:    "Time spent parsing or decoding a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hlsense_cache_hits_total",
		Help: "Total number of parse tree cache hits.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hlsense_cache_misses_total",
		Help: "Total number of parse tree cache misses.",
	})

	CacheEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hlsense_cache_evictions_total",
		Help: "Total number of parse trees evicted by capacity or file changes.",
	})

	AliasChainLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hlsense_alias_chain_length",
		Help:    "Number of alias hops followed to reach an underlying declaration.",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
	})

	WorkspaceModules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hlsense_workspace_modules",
		Help: "Number of modules currently indexed in the workspace.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hlsense_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)

// Load results recorded by ParseTreeLoadsTotal.
const (
	LoadHit     = "hit"
	LoadMissing = "missing"
	LoadError   = "error"
	LoadCurrent = "current"
)
