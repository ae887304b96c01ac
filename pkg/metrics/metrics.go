package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CacheMetrics counts cache outcomes per key class so hit rate and fault
// rate are visible without scraping logs.
type CacheMetrics struct {
	Hits   *prometheus.CounterVec
	Misses *prometheus.CounterVec
	Faults *prometheus.CounterVec
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total number of cache hits.",
	}, []string{"key"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total number of cache misses.",
	}, []string{"key"})
	faults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "cache",
		Name:      "faults_total",
		Help:      "Total number of absorbed cache failures.",
	}, []string{"key", "op"})

	reg.MustRegister(hits, misses, faults)
	return &CacheMetrics{Hits: hits, Misses: misses, Faults: faults}
}

// NopCacheMetrics registers nothing; for tests.
func NopCacheMetrics() *CacheMetrics {
	return NewCacheMetrics(prometheus.NewRegistry())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
