package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "cems"

// Metrics holds the collectors the front end reports. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	authAttempts *prometheus.CounterVec
	sessionOpens *prometheus.CounterVec
	fetchErrors  *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Login and registration attempts by outcome.",
		}, []string{"op", "outcome"}),
		sessionOpens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_opens_total",
			Help:      "Session initializations by persisted token state.",
		}, []string{"token"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_api_errors_total",
			Help:      "Failed calls to the event service.",
		}, []string{"call"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Page request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(m.authAttempts, m.sessionOpens, m.fetchErrors, m.httpDuration)
	return m
}

func (m *Metrics) AuthAttempt(op, outcome string) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) SessionOpened(token string) {
	if m == nil {
		return
	}
	m.sessionOpens.WithLabelValues(token).Inc()
}

func (m *Metrics) EventAPIError(call string) {
	if m == nil {
		return
	}
	m.fetchErrors.WithLabelValues(call).Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}
