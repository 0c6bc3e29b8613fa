package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	scheduleSaves   *prometheus.CounterVec
	rosterRefreshes *prometheus.CounterVec
	rosterSize      prometheus.Gauge
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftboard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shiftboard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftboard",
			Name:      "http_errors_total",
			Help:      "Failed HTTP requests by error code",
		}, []string{"route", "method", "code"}),
		scheduleSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftboard",
			Name:      "schedule_saves_total",
			Help:      "Day schedule saves by outcome",
		}, []string{"outcome"}),
		rosterRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftboard",
			Name:      "roster_refreshes_total",
			Help:      "Roster cache refreshes by outcome",
		}, []string{"outcome"}),
		rosterSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shiftboard",
			Name:      "roster_agents",
			Help:      "Agents in the roster cache",
		}),
	}
	reg.MustRegister(m.requests, m.requestDuration, m.errors, m.scheduleSaves, m.rosterRefreshes, m.rosterSize)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordScheduleSave counts a save attempt.
func (m *Metrics) RecordScheduleSave(err error) {
	if m == nil {
		return
	}
	m.scheduleSaves.WithLabelValues(outcome(err)).Inc()
}

// RecordRosterRefresh counts a refresh and tracks the roster size on success.
func (m *Metrics) RecordRosterRefresh(size int, err error) {
	if m == nil {
		return
	}
	m.rosterRefreshes.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.rosterSize.Set(float64(size))
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
