package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh outcomes recorded by ObserveRefresh.
const (
	RefreshSuccess   = "success"
	RefreshFailure   = "failure"
	RefreshNoToken   = "no_token"
	RefreshDiscarded = "discarded"
)

// Metrics holds the session manager's counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RefreshTotal    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	LogoutTotal     prometheus.Counter
	RetryTotal      prometheus.Counter
}

// New builds the collectors on a private registry labelled with appName.
func New(appName string) *Metrics {
	labels := prometheus.Labels{"app": appName}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "rideon_session_requests_total",
				Help:        "Authenticated requests by method and final status code",
				ConstLabels: labels,
			},
			[]string{"method", "status"},
		),
		RefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "rideon_session_refresh_total",
				Help:        "Access token refresh attempts by result",
				ConstLabels: labels,
			},
			[]string{"result"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "rideon_session_request_duration_seconds",
				Help:        "Latency of authenticated requests including any refresh and retry",
				ConstLabels: labels,
				Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		LogoutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rideon_session_logout_total",
			Help:        "Logouts performed, explicit or forced by a failed refresh",
			ConstLabels: labels,
		}),
		RetryTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rideon_session_retry_total",
			Help:        "Requests replayed after a successful refresh",
			ConstLabels: labels,
		}),
	}
	m.registry.MustRegister(m.RequestsTotal, m.RefreshTotal, m.RequestDuration, m.LogoutTotal, m.RetryTotal)
	return m
}

func (m *Metrics) ObserveRequest(method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) ObserveRefresh(result string) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveLogout() {
	if m == nil {
		return
	}
	m.LogoutTotal.Inc()
}

func (m *Metrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.RetryTotal.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
