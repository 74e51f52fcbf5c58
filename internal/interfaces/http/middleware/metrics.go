// Package middleware provides HTTP middleware for the order sync API.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ordersync/backend/internal/infrastructure/telemetry"
)

// HTTPMetricsConfig holds configuration for HTTP metrics middleware.
type HTTPMetricsConfig struct {
	// Registry receives the HTTP collectors. Nil disables collection.
	Registry *telemetry.Registry
	// Enabled controls whether metrics collection is active.
	Enabled bool
	// SkipPaths lists route patterns that are never recorded, such as the scrape endpoint itself.
	SkipPaths []string
}

// DefaultHTTPMetricsConfig returns default HTTP metrics configuration.
func DefaultHTTPMetricsConfig() HTTPMetricsConfig {
	return HTTPMetricsConfig{
		Enabled:   true,
		SkipPaths: []string{"/metrics"},
	}
}

// httpMetrics holds all HTTP-related collectors.
type httpMetrics struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec
	activeRequests  prometheus.Gauge
}

func newHTTPMetrics(reg *telemetry.Registry) (*httpMetrics, error) {
	ns := reg.Namespace()
	m := &httpMetrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"}),
		responseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "HTTP response body size.",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
		}, []string{"method", "route"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "HTTP requests currently being served.",
		}),
	}
	if err := reg.Register(m.requestTotal, m.requestDuration, m.responseSize, m.activeRequests); err != nil {
		return nil, err
	}
	return m, nil
}

// HTTPMetrics returns a Gin middleware that records request count, latency,
// response size and in-flight requests. Routes are labelled by their pattern
// (e.g. "/api/v1/orders/:id") to keep cardinality bounded.
func HTTPMetrics(cfg HTTPMetricsConfig) (gin.HandlerFunc, error) {
	if !cfg.Enabled || cfg.Registry == nil {
		return func(c *gin.Context) { c.Next() }, nil
	}

	metrics, err := newHTTPMetrics(cfg.Registry)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		route := getRoutePattern(c)
		if _, ok := skip[route]; ok {
			c.Next()
			return
		}

		start := time.Now()
		metrics.activeRequests.Inc()
		defer metrics.activeRequests.Dec()

		c.Next()

		method := c.Request.Method
		metrics.requestTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size > 0 {
			metrics.responseSize.WithLabelValues(method, route).Observe(float64(size))
		}
	}, nil
}

// getRoutePattern returns the matched route pattern instead of the raw path.
func getRoutePattern(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		return "unknown"
	}
	return route
}

// HTTPMetricsStatusGroup groups a status code into its class (2xx, 4xx, 5xx).
func HTTPMetricsStatusGroup(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "other"
	}
}
