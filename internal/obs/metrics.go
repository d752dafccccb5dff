// Package obs holds the Prometheus instrumentation shared across the
// engine. Metrics are optional everywhere they are threaded through: a nil
// *Metrics disables instrumentation without branching at every call site.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/histogram the engine records.
type Metrics struct {
	VectorInserts     prometheus.Counter
	VectorDeletes     prometheus.Counter
	SearchQueries     prometheus.Counter
	SearchErrors      prometheus.Counter
	SearchLatency     prometheus.Histogram
	CompactionRuns    prometheus.Counter
	CompactionLatency prometheus.Histogram
	TombstoneRatio    prometheus.Gauge
	PressureLevel     prometheus.Gauge
}

// NewMetrics registers and returns a fresh Metrics instance against the
// default Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		VectorInserts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "edgevec_vector_inserts_total",
			Help: "Total vector insertions across all indices.",
		}),
		VectorDeletes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "edgevec_vector_deletes_total",
			Help: "Total vector soft-deletions across all indices.",
		}),
		SearchQueries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "edgevec_search_queries_total",
			Help: "Total search queries executed.",
		}),
		SearchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "edgevec_search_errors_total",
			Help: "Total search queries that returned an error.",
		}),
		SearchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "edgevec_search_latency_seconds",
			Help: "Search call latency in seconds.",
		}),
		CompactionRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "edgevec_compaction_runs_total",
			Help: "Total index compaction runs.",
		}),
		CompactionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "edgevec_compaction_latency_seconds",
			Help: "Compaction call latency in seconds.",
		}),
		TombstoneRatio: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "edgevec_tombstone_ratio",
			Help: "Fraction of soft-deleted entries in the largest index.",
		}),
		PressureLevel: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "edgevec_memory_pressure_level",
			Help: "Current memory pressure level: 0=normal, 1=warning, 2=critical.",
		}),
	}
}
