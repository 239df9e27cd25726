// Package obsmetrics defines the Prometheus metrics the dictionary
// exposes for its own operations: lookups, stores, cache effectiveness,
// overflow entries, clears and the next value ID.
package obsmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter and gauge the dictionary updates.
type Metrics struct {
	LookupsTotal     *prometheus.CounterVec
	StoresTotal      prometheus.Counter
	StoreDuplicates  prometheus.Counter
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	OverflowEntries  prometheus.Gauge
	ClearsTotal      prometheus.Counter
	NextValueID      prometheus.Gauge
}

// New builds and returns a Metrics bundle, registering it against reg.
// Passing nil skips registration; the metrics still update in memory,
// they're just never exposed to a collector.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "valuedict",
			Name:      "lookups_total",
			Help:      "Number of GetID/GetValue/GetNamespace lookups, by kind.",
		}, []string{"kind"}),
		StoresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "valuedict",
			Name:      "stores_total",
			Help:      "Number of values assigned a new ID, including datatype IRIs stored for a literal.",
		}),
		StoreDuplicates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "valuedict",
			Name:      "store_duplicates_total",
			Help:      "Number of StoreValue calls that resolved to an existing ID.",
		}),
		CacheHitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "valuedict",
			Name:      "cache_hits_total",
			Help:      "Number of cache hits, by cache name.",
		}, []string{"cache"}),
		CacheMissesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "valuedict",
			Name:      "cache_misses_total",
			Help:      "Number of cache misses, by cache name.",
		}, []string{"cache"}),
		OverflowEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "valuedict",
			Name:      "overflow_entries",
			Help:      "Number of values and namespaces written through the hash overflow bucket chain since the store was opened or last cleared.",
		}),
		ClearsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "valuedict",
			Name:      "clears_total",
			Help:      "Number of times Clear() has issued a new revision.",
		}),
		NextValueID: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "valuedict",
			Name:      "next_value_id",
			Help:      "The next value ID the allocator will hand out.",
		}),
	}
}
