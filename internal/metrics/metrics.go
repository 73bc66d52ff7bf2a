// Package metrics provides Prometheus metrics collection for the embedded daemon.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// ContainerStartsTotal tracks container starts by preset and outcome.
	ContainerStartsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "container_starts_total",
			Help: "Total number of container starts",
		},
		[]string{"preset", "status"},
	)

	// ContainerStartDuration tracks how long a container takes to become ready.
	ContainerStartDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "container_start_duration_seconds",
			Help:    "Container start duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"preset"},
	)

	// ContainersActive tracks currently running containers.
	ContainersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "containers_active",
			Help: "Number of currently running containers",
		},
	)

	// ContainerTerminationsTotal tracks container terminations by preset.
	ContainerTerminationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "container_terminations_total",
			Help: "Total number of container terminations",
		},
		[]string{"preset"},
	)
)

// PrometheusMiddleware returns a Gin middleware that collects HTTP metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordContainerStart records metrics for a container start attempt.
func RecordContainerStart(preset string, duration time.Duration, status string) {
	ContainerStartsTotal.WithLabelValues(preset, status).Inc()
	if status == "success" {
		ContainerStartDuration.WithLabelValues(preset).Observe(duration.Seconds())
		ContainersActive.Inc()
	}
}

// RecordContainerTermination records metrics for a container termination.
func RecordContainerTermination(preset string) {
	ContainerTerminationsTotal.WithLabelValues(preset).Inc()
	ContainersActive.Dec()
}
