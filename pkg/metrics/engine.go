package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marmos91/chunkstream/pkg/engine"
)

var _ engine.Metrics = (*EngineMetrics)(nil)

// EngineMetrics provides Prometheus metrics for the chunk engine.
// It implements engine.Metrics.
type EngineMetrics struct {
	cacheTotal     *prometheus.CounterVec
	fetchTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	fetchBytes     prometheus.Histogram
	verifyFailures prometheus.Counter
}

// NewEngineMetrics creates and registers engine metrics.
// If registry is nil, metrics are created but not registered.
func NewEngineMetrics(registry prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "chunkstream",
				Subsystem: "engine",
				Name:      "cache_lookups_total",
				Help:      "Total number of chunk cache lookups by result",
			},
			[]string{LabelStatus}, // "hit", "miss"
		),

		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "chunkstream",
				Subsystem: "engine",
				Name:      "fetch_total",
				Help:      "Total number of chunk source reads by outcome",
			},
			[]string{LabelStatus},
		),

		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "chunkstream",
				Subsystem: "engine",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of chunk source reads",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{LabelStatus},
		),

		fetchBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "chunkstream",
				Subsystem: "engine",
				Name:      "fetch_bytes",
				Help:      "Distribution of bytes read per chunk fetch",
				Buckets: []float64{
					4096,     // 4KB
					65536,    // 64KB
					262144,   // 256KB
					1048576,  // 1MB
					4194304,  // 4MB
					16777216, // 16MB
				},
			},
		),

		verifyFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "chunkstream",
				Subsystem: "engine",
				Name:      "verify_failures_total",
				Help:      "Number of chunks that failed integrity verification",
			},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.cacheTotal,
			m.fetchTotal,
			m.fetchDuration,
			m.fetchBytes,
			m.verifyFailures,
		)
	}

	return m
}

// ObserveCacheHit records a fetch served from cache.
func (m *EngineMetrics) ObserveCacheHit() {
	m.cacheTotal.WithLabelValues("hit").Inc()
}

// ObserveCacheMiss records a fetch that had to read the source.
func (m *EngineMetrics) ObserveCacheMiss() {
	m.cacheTotal.WithLabelValues("miss").Inc()
}

// ObserveFetch records a finished source read.
func (m *EngineMetrics) ObserveFetch(ok bool, bytes int, duration time.Duration) {
	status := StatusOK
	if !ok {
		status = StatusError
	}
	m.fetchTotal.WithLabelValues(status).Inc()
	m.fetchDuration.WithLabelValues(status).Observe(duration.Seconds())
	if ok {
		m.fetchBytes.Observe(float64(bytes))
	}
}

// ObserveVerifyFailure records a chunk failing integrity verification.
func (m *EngineMetrics) ObserveVerifyFailure() {
	m.verifyFailures.Inc()
}
