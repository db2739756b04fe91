package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quantisuite/internal/calc"
)

// Metrics are the counters exported on /metrics.
type Metrics struct {
	registry     *prometheus.Registry
	calculations *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	requests     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantisuite_calculations_total",
				Help: "Calculations by calculator kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantisuite_calculation_duration_seconds",
				Help:    "Time spent rewriting and evaluating an expression",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"kind"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantisuite_http_requests_total",
				Help: "API requests by route pattern and status code",
			},
			[]string{"route", "code"},
		),
	}
	m.registry.MustRegister(m.calculations, m.duration, m.requests)
	return m
}

// Outcome labels a calculation error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, calc.ErrFactorialDomain):
		return "factorial_domain"
	case errors.Is(err, calc.ErrNonFinite):
		return "non_finite"
	case errors.Is(err, calc.ErrFactorialOverflow):
		return "factorial_overflow"
	case errors.Is(err, calc.ErrEmptyExpression):
		return "empty"
	}
	return "malformed"
}

func (m *Metrics) ObserveCalculation(kind calc.Kind, d time.Duration, err error) {
	m.calculations.WithLabelValues(string(kind), Outcome(err)).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

func (m *Metrics) ObserveRequest(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
