// Package metrics exposes Prometheus instrumentation for submissions,
// completions and webhook callbacks.
package metrics

import (
	"net/http"
	"time"

	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "irmock"

// Submission shapes, used as the "shape" label.
const (
	ShapeBatch  = "batch"
	ShapeSingle = "single"
)

// Callback outcomes, used as the "outcome" label.
const (
	CallbackDelivered = "delivered"
	CallbackFailed    = "failed"
)

// Metrics holds the collectors of one registry. The zero value is not usable;
// create instances with New.
type Metrics struct {
	registry *prometheus.Registry

	SubmissionsCreated *prometheus.CounterVec
	Completions        *prometheus.CounterVec
	CompletionLatency  prometheus.Histogram
	Callbacks          *prometheus.CounterVec
	CallbackLatency    prometheus.Histogram
	PendingTimers      prometheus.Gauge
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SubmissionsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_created_total",
			Help:      "Total image submissions accepted, by request shape.",
		}, []string{"shape"}),

		Completions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Total submissions that reached a terminal status.",
		}, []string{"status"}),

		CompletionLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_latency_seconds",
			Help:      "Time from submission creation to terminal status.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 7.5, 10, 30, 60},
		}),

		Callbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callbacks_total",
			Help:      "Total webhook callback attempts, by outcome.",
		}, []string{"outcome"}),

		CallbackLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "callback_duration_seconds",
			Help:      "Duration of webhook callback requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}),

		PendingTimers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_timers",
			Help:      "Number of completion timers armed and not yet fired.",
		}),
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SubmissionCreated counts n accepted submissions of the given shape.
func (m *Metrics) SubmissionCreated(shape string, n int) {
	m.SubmissionsCreated.WithLabelValues(shape).Add(float64(n))
}

// TimerArmed implements task.Observer.
func (m *Metrics) TimerArmed() {
	m.PendingTimers.Inc()
}

// TimerReleased implements task.Observer.
func (m *Metrics) TimerReleased() {
	m.PendingTimers.Dec()
}

// CompletionRecorded implements task.Observer.
func (m *Metrics) CompletionRecorded(status domain.SubmissionStatus, latency time.Duration) {
	m.Completions.WithLabelValues(string(status)).Inc()
	m.CompletionLatency.Observe(latency.Seconds())
}

// CallbackRecorded implements webhook.Recorder.
func (m *Metrics) CallbackRecorded(delivered bool, duration time.Duration) {
	outcome := CallbackDelivered
	if !delivered {
		outcome = CallbackFailed
	}
	m.Callbacks.WithLabelValues(outcome).Inc()
	m.CallbackLatency.Observe(duration.Seconds())
}
