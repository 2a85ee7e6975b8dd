package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the process-wide metrics facade. All recording goes through
// typed methods so label sets stay bounded.
type Metrics struct {
	apiRequests        *prometheus.CounterVec
	apiDuration        *prometheus.HistogramVec
	aggregateOps       *prometheus.HistogramVec
	aggregateConflicts *prometheus.CounterVec
	aggregateRetries   *prometheus.CounterVec
	sweepRuns          prometheus.Counter
	sweepFinished      prometheus.Counter
	sweepFailures      prometheus.Counter
	mailSends          *prometheus.CounterVec

	registry *prometheus.Registry
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "HTTP requests by route, method and status class.",
		}, []string{"route", "method", "status"}),
		apiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		aggregateOps: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aggregate_operation_duration_seconds",
			Help:    "Aggregate write latency by operation and outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		aggregateConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregate_conflicts_total",
			Help: "Optimistic concurrency and unique-index conflicts by operation.",
		}, []string{"operation"}),
		aggregateRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregate_retries_total",
			Help: "Retryable aggregate failures by operation.",
		}, []string{"operation"}),
		sweepRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "project_sweep_runs_total",
			Help: "Scheduled expiry sweep invocations.",
		}),
		sweepFinished: factory.NewCounter(prometheus.CounterOpts{
			Name: "project_sweep_finished_total",
			Help: "Projects transitioned to Finished by the sweep.",
		}),
		sweepFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "project_sweep_failures_total",
			Help: "Per-project sweep failures left for the next run.",
		}),
		mailSends: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mail_sends_total",
			Help: "Outbound mail attempts by outcome.",
		}, []string{"status"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(route, method, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(route, method, status).Inc()
	m.apiDuration.WithLabelValues(route, method).Observe(dur.Seconds())
}

func (m *Metrics) ObserveAggregateOperation(operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.WithLabelValues(operation, status).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(operation string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncAggregateRetry(operation string) {
	if m == nil {
		return
	}
	m.aggregateRetries.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveSweep(finished, failed int) {
	if m == nil {
		return
	}
	m.sweepRuns.Inc()
	m.sweepFinished.Add(float64(finished))
	m.sweepFailures.Add(float64(failed))
}

func (m *Metrics) IncMailSend(status string) {
	if m == nil {
		return
	}
	m.mailSends.WithLabelValues(status).Inc()
}
