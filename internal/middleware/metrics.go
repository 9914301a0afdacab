package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus counters/histograms for HTTP requests and
// tool executions, plus a lightweight in-memory snapshot map the dashboard
// reads as JSON (it has no Prometheus client available to it).
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	toolCallsTotal  *prometheus.CounterVec

	mu       sync.Mutex
	snapshot map[string]int64
}

// NewMetrics registers the collectors against a dedicated registry (not
// the global default, so repeated construction in tests never panics on
// duplicate registration) and returns the wrapper.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_http_requests_total",
			Help: "Total HTTP requests handled, by method/path/status.",
		}, []string{"method", "path", "status"}),
		requestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "nexus_http_request_duration_seconds",
			Help: "HTTP request duration in seconds.",
		}, []string{"method", "path"}),
		toolCallsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_tool_calls_total",
			Help: "Total tools/call invocations, by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		snapshot: make(map[string]int64),
	}
	return m
}

// RecordToolCall increments the tool-call counter and the dashboard
// snapshot map.
func (m *Metrics) RecordToolCall(tool string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	m.toolCallsTotal.WithLabelValues(tool, outcome).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot["tool_calls_total"]++
	if success {
		m.snapshot["tool_calls_success"]++
	} else {
		m.snapshot["tool_calls_error"]++
	}
}

// Registry returns the Prometheus registry backing these collectors, for
// wiring into a promhttp.Handler at /metrics/prometheus.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Snapshot returns a point-in-time copy of the simple counters, for the
// dashboard's JSON view.
func (m *Metrics) Snapshot() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]int64, len(m.snapshot))
	for k, v := range m.snapshot {
		out[k] = v
	}
	return out
}

// EchoMetrics builds the HTTP-request observing middleware.
func (m *Metrics) EchoMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			method := c.Request().Method
			status := c.Response().Status

			m.requestsTotal.WithLabelValues(method, path, statusLabel(status)).Inc()
			m.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

			m.mu.Lock()
			m.snapshot["http_requests_total"]++
			m.mu.Unlock()

			return err
		}
	}
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}
