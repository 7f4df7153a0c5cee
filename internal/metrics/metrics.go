// Package metrics exposes the service counters on a private Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters the services increment. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	searches      prometheus.Counter
	logins        *prometheus.CounterVec
}

// New creates the registry and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "awakened",
			Name:      "submission_transitions_total",
			Help:      "Submission status changes by target status.",
		}, []string{"status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "awakened",
			Name:      "notifications_total",
			Help:      "Notifications created by type.",
		}, []string{"type"}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "awakened",
			Name:      "search_queries_total",
			Help:      "Search queries served.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "awakened",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.transitions, m.notifications, m.searches, m.logins,
	)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Transition records a submission entering status.
func (m *Metrics) Transition(status string) {
	if m != nil {
		m.transitions.WithLabelValues(status).Inc()
	}
}

// Notification records a notification of the given type.
func (m *Metrics) Notification(kind string) {
	if m != nil {
		m.notifications.WithLabelValues(kind).Inc()
	}
}

// Search records a served query.
func (m *Metrics) Search() {
	if m != nil {
		m.searches.Inc()
	}
}

// Login records a login outcome ("ok", "invalid", "inactive").
func (m *Metrics) Login(outcome string) {
	if m != nil {
		m.logins.WithLabelValues(outcome).Inc()
	}
}
