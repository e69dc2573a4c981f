package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics covers concerns shared by the API and the worker: the
// embedding cache, outbound retries and breakers, and scheme index rebuilds.
// It satisfies redisembed.CacheObserver, resilience.Observer and
// usecase.RebuildObserver.
type PipelineMetrics struct {
	cacheTotal      *prometheus.CounterVec
	retriesTotal    *prometheus.CounterVec
	breakerState    *prometheus.GaugeVec
	rebuildTotal    *prometheus.CounterVec
	rebuildDuration prometheus.Histogram
	indexedSchemes  prometheus.Gauge
}

func newPipelineMetrics(registry *prometheus.Registry, service string) *PipelineMetrics {
	constLabels := prometheus.Labels{"service": service}

	m := &PipelineMetrics{
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "embedding_cache",
			Name:        "lookups_total",
			Help:        "Embedding cache lookups by result (hit, miss, error).",
			ConstLabels: constLabels,
		}, []string{"result"}),
		retriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "outbound",
			Name:        "retries_total",
			Help:        "Retried outbound calls by operation.",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "outbound",
			Name:        "breaker_state",
			Help:        "Circuit breaker state by operation: 0 closed, 1 half-open, 2 open.",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		rebuildTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "scheme_index",
			Name:        "rebuilds_total",
			Help:        "Scheme index rebuild attempts by status.",
			ConstLabels: constLabels,
		}, []string{"status"}),
		rebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "scheme_index",
			Name:        "rebuild_duration_seconds",
			Help:        "Scheme index rebuild duration in seconds.",
			Buckets:     []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			ConstLabels: constLabels,
		}),
		indexedSchemes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "scheme_index",
			Name:        "points",
			Help:        "Points in the scheme collection behind the live alias.",
			ConstLabels: constLabels,
		}),
	}
	registry.MustRegister(
		m.cacheTotal,
		m.retriesTotal,
		m.breakerState,
		m.rebuildTotal,
		m.rebuildDuration,
		m.indexedSchemes,
	)
	return m
}

func (m *PipelineMetrics) ObserveEmbeddingCache(result string, n int) {
	if n <= 0 {
		return
	}
	m.cacheTotal.WithLabelValues(result).Add(float64(n))
}

func (m *PipelineMetrics) ObserveRetry(operation string) {
	m.retriesTotal.WithLabelValues(operation).Inc()
}

func (m *PipelineMetrics) ObserveBreakerState(operation, state string) {
	value := 0.0
	switch state {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	m.breakerState.WithLabelValues(operation).Set(value)
}

func (m *PipelineMetrics) ObserveSchemeRebuild(status string, points int, duration time.Duration) {
	m.rebuildTotal.WithLabelValues(status).Inc()
	m.rebuildDuration.Observe(duration.Seconds())
	if status == "success" {
		m.indexedSchemes.Set(float64(points))
	}
}
