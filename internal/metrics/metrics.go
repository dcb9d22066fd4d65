// Package metrics owns the prometheus collectors for the scoring engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry and collectors. Constructed once and shared via
// dependency injection; nothing registers on the global default registry.
type Metrics struct {
	registry *prometheus.Registry

	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec
	CacheEvictions *prometheus.CounterVec

	LeaderboardDuration prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crux_cache_hits_total",
			Help: "Cache hits by store.",
		}, []string{"store"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crux_cache_misses_total",
			Help: "Cache misses by store.",
		}, []string{"store"}),
		CacheEvictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crux_cache_evictions_total",
			Help: "Entries removed by the background sweep, by store.",
		}, []string{"store"}),
		LeaderboardDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crux_leaderboard_compute_seconds",
			Help:    "Time spent computing a leaderboard page on a cache miss.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		m.CacheHits,
		m.CacheMisses,
		m.CacheEvictions,
		m.LeaderboardDuration,
	)

	return m
}

// Handler serves the registry in the standard exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
