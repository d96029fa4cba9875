// Package metrics exposes Prometheus metrics for HTTP traffic and
// authorization decisions.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authorization outcomes.
const (
	AuthAllowed       = "allowed"
	AuthMissingToken  = "missing_token"
	AuthInvalidToken  = "invalid_token"
	AuthForbidden     = "forbidden"
	LoginSucceeded    = "login_succeeded"
	LoginRejected     = "login_rejected"
	ValidationFailure = "validation_failed"
)

// Collector records request and access-control metrics.
type Collector struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	authDecisions *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bitacora_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bitacora_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bitacora_auth_decisions_total",
			Help: "Access-control and login decisions by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(c.requests, c.duration, c.authDecisions)
	return c
}

// RecordRequest records a completed HTTP request.
func (c *Collector) RecordRequest(method, route string, statusCode int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordAuth records an access-control outcome.
func (c *Collector) RecordAuth(outcome string) {
	if c == nil {
		return
	}
	c.authDecisions.WithLabelValues(outcome).Inc()
}

// Handler returns the HTTP handler for Prometheus scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
