// Package metrics holds the client's Prometheus instruments. They live on a
// private registry so tests and embedders never collide with the global one.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockroom"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeStale   = "stale"
	OutcomeSkipped = "skipped"
)

// Metrics groups every instrument the session manager and queue report.
type Metrics struct {
	registry *prometheus.Registry

	Logins        *prometheus.CounterVec
	Refreshes     *prometheus.CounterVec
	RenewalErrors prometheus.Counter
	Authenticated prometheus.Gauge
	Notifications *prometheus.CounterVec
	Pending       prometheus.Gauge
}

// New builds the instruments and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "refreshes_total",
			Help:      "Token refreshes by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		RenewalErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "renewal_errors_total",
			Help:      "Background renewal ticks that failed.",
		}),
		Authenticated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "authenticated",
			Help:      "1 while the session holds an access token.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "posted_total",
			Help:      "Notifications posted by severity.",
		}, []string{"severity"}),
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "pending",
			Help:      "Notifications currently shown.",
		}),
	}

	reg.MustRegister(
		m.Logins,
		m.Refreshes,
		m.RenewalErrors,
		m.Authenticated,
		m.Notifications,
		m.Pending,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the private registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetAuthenticated records the session state.
func (m *Metrics) SetAuthenticated(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.Authenticated.Set(1)
	} else {
		m.Authenticated.Set(0)
	}
}

// Login counts a login attempt.
func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// Refresh counts a refresh. trigger is "manual", "renewal" or "retry".
func (m *Metrics) Refresh(trigger, outcome string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(trigger, outcome).Inc()
}

// RenewalError counts a failed background tick.
func (m *Metrics) RenewalError() {
	if m == nil {
		return
	}
	m.RenewalErrors.Inc()
}

// Notification counts a posted notification.
func (m *Metrics) Notification(severity string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(severity).Inc()
}

// SetPending records how many notifications are shown.
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.Pending.Set(float64(n))
}
