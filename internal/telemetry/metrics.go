package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stockroom-labs/stockroom/internal/admission"
)

// Metrics holds the process-wide operational counters
type Metrics struct {
	registry *prometheus.Registry

	admissionVerdicts *prometheus.CounterVec
	authFailures      prometheus.Counter
	authSuccesses     prometheus.Counter
}

// New creates and registers the metric set on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		admissionVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stockroom",
			Name:      "admission_checks_total",
			Help:      "Admission check outcomes by verdict.",
		}, []string{"verdict"}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stockroom",
			Name:      "auth_failures_total",
			Help:      "Failed credential verifications recorded for lockout tracking.",
		}),
		authSuccesses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stockroom",
			Name:      "auth_successes_total",
			Help:      "Successful credential verifications.",
		}),
	}

	registry.MustRegister(m.admissionVerdicts, m.authFailures, m.authSuccesses)
	return m
}

// ObserveVerdict implements admission.Metrics
func (m *Metrics) ObserveVerdict(v admission.Verdict) {
	m.admissionVerdicts.WithLabelValues(v.String()).Inc()
}

// ObserveAuthFailure implements admission.Metrics
func (m *Metrics) ObserveAuthFailure() {
	m.authFailures.Inc()
}

// ObserveAuthSuccess counts a verified credential
func (m *Metrics) ObserveAuthSuccess() {
	m.authSuccesses.Inc()
}

// Handler exposes the registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
