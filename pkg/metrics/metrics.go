// Package metrics exposes Prometheus collectors for the compile service:
// how many compiles ran, how many instructions they emitted, and how
// often the distributed cache paid off.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered for one service instance.
type Metrics struct {
	compilesTotal       *prometheus.CounterVec
	compileDuration     prometheus.Histogram
	instructionsEmitted prometheus.Histogram
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	registry            *prometheus.Registry
}

// New creates and registers all collectors under the given namespace.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{registry: registry}

	m.compilesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "compiles_total",
		Help:      "Total number of compile requests, by outcome.",
	}, []string{"outcome"})

	m.compileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "compile_duration_seconds",
		Help:      "Wall-clock time spent lowering one AST to Code.",
		Buckets:   prometheus.DefBuckets,
	})

	m.instructionsEmitted = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "instructions_emitted",
		Help:      "Number of instructions in the Code produced by one compile.",
		Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000},
	})

	m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Compile requests served from the distributed cache.",
	})

	m.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Compile requests that missed the distributed cache.",
	})

	registry.MustRegister(m.compilesTotal, m.compileDuration, m.instructionsEmitted, m.cacheHits, m.cacheMisses)
	return m
}

// ObserveCompile records the outcome of one compile.
func (m *Metrics) ObserveCompile(outcome string, seconds float64, instructionCount int) {
	m.compilesTotal.WithLabelValues(outcome).Inc()
	m.compileDuration.Observe(seconds)
	m.instructionsEmitted.Observe(float64(instructionCount))
}

// ObserveCacheHit records a distributed-cache hit.
func (m *Metrics) ObserveCacheHit() { m.cacheHits.Inc() }

// ObserveCacheMiss records a distributed-cache miss.
func (m *Metrics) ObserveCacheMiss() { m.cacheMisses.Inc() }

// Handler serves the registered collectors for Prometheus to scrape.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
