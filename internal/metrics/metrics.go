// Package metrics exposes Prometheus collectors for the registration service
// and its HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "factionboard"

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	mutations    *prometheus.CounterVec
	authFailures *prometheus.CounterVec
	duplicates   prometheus.Counter
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a Metrics instance with its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_mutations_total",
			Help:      "Successful registration mutations by operation.",
		}, []string{"operation"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "owner_secret_rejections_total",
			Help:      "Mutations refused because the owner secret did not match.",
		}, []string{"operation"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_player_rejections_total",
			Help:      "Creates or renames refused because the player name is taken.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.mutations, m.authFailures, m.duplicates, m.requests, m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Mutation counts a successful create, update, faction change or delete
func (m *Metrics) Mutation(operation string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation).Inc()
}

// AuthFailure counts a rejected owner secret
func (m *Metrics) AuthFailure(operation string) {
	if m == nil {
		return
	}
	m.authFailures.WithLabelValues(operation).Inc()
}

// DuplicatePlayer counts a rejected duplicate name
func (m *Metrics) DuplicatePlayer() {
	if m == nil {
		return
	}
	m.duplicates.Inc()
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(d.Seconds())
}
