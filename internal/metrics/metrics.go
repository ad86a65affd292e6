// Package metrics exposes Prometheus collectors for the HTTP surface and
// the guard chain.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	// RequestsTotal counts HTTP requests by method, route template and status class.
	RequestsTotal *prometheus.CounterVec
	// RequestDuration records request latency in seconds.
	RequestDuration *prometheus.HistogramVec
	// GuardRejectionsTotal counts requests stopped by a guard.
	GuardRejectionsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sayings_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sayings_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GuardRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sayings_guard_rejections_total",
				Help: "Requests rejected by an authentication or authorization guard",
			},
			[]string{"guard", "reason"},
		),
	}
	for _, c := range []prometheus.Collector{m.RequestsTotal, m.RequestDuration, m.GuardRejectionsTotal} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				return nil, errors.New("metrics already registered")
			}
			return nil, err
		}
	}
	return m, nil
}

// GuardRejected counts one rejection by the named guard
func (m *Metrics) GuardRejected(guard, reason string) {
	if m == nil {
		return
	}
	m.GuardRejectionsTotal.WithLabelValues(guard, reason).Inc()
}

// Middleware records request count and latency per route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status()/100) + "xx"
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the collectors gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
