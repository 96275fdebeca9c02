// Package metrics provides Prometheus implementations of the metrics
// interfaces consumed by the admission and engine packages. Passing nil
// instead of these implementations disables collection with zero
// overhead.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marmos91/chunkstream/pkg/admission"
)

var _ admission.Metrics = (*AdmissionMetrics)(nil)

// Label constants for metrics.
const (
	LabelPriority = "priority"
	LabelStatus   = "status"
)

// Status constants for completed work.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// AdmissionMetrics provides Prometheus metrics for the admission
// controller. It implements admission.Metrics.
type AdmissionMetrics struct {
	enqueuedTotal  *prometheus.CounterVec
	completedTotal *prometheus.CounterVec
	waitDuration   prometheus.Histogram
	runDuration    *prometheus.HistogramVec
	queueDepth     prometheus.Gauge
	active         prometheus.Gauge
}

// NewAdmissionMetrics creates and registers admission metrics.
// If registry is nil, metrics are created but not registered.
func NewAdmissionMetrics(registry prometheus.Registerer) *AdmissionMetrics {
	m := &AdmissionMetrics{
		enqueuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "chunkstream",
				Subsystem: "admission",
				Name:      "enqueued_total",
				Help:      "Total number of requests accepted into the queue",
			},
			[]string{LabelPriority},
		),

		completedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "chunkstream",
				Subsystem: "admission",
				Name:      "completed_total",
				Help:      "Total number of requests that finished executing",
			},
			[]string{LabelStatus},
		),

		waitDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "chunkstream",
				Subsystem: "admission",
				Name:      "wait_duration_seconds",
				Help:      "Time requests spent queued before dispatch",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "chunkstream",
				Subsystem: "admission",
				Name:      "run_duration_seconds",
				Help:      "Executor runtime of dispatched requests",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{LabelStatus},
		),

		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "chunkstream",
				Subsystem: "admission",
				Name:      "queue_depth",
				Help:      "Number of requests currently queued",
			},
		),

		active: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "chunkstream",
				Subsystem: "admission",
				Name:      "active",
				Help:      "Number of requests currently executing",
			},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.enqueuedTotal,
			m.completedTotal,
			m.waitDuration,
			m.runDuration,
			m.queueDepth,
			m.active,
		)
	}

	return m
}

// ObserveEnqueued records a request accepted into the queue.
func (m *AdmissionMetrics) ObserveEnqueued(priority string) {
	m.enqueuedTotal.WithLabelValues(priority).Inc()
}

// ObserveDispatched records the time a request waited before dispatch.
func (m *AdmissionMetrics) ObserveDispatched(wait time.Duration) {
	m.waitDuration.Observe(wait.Seconds())
}

// ObserveCompleted records a finished request with its outcome and runtime.
func (m *AdmissionMetrics) ObserveCompleted(ok bool, runtime time.Duration) {
	status := StatusOK
	if !ok {
		status = StatusError
	}
	m.completedTotal.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(runtime.Seconds())
}

// SetQueueDepth records the current queue depth.
func (m *AdmissionMetrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

// SetActive records the current number of executing requests.
func (m *AdmissionMetrics) SetActive(n int) {
	m.active.Set(float64(n))
}
