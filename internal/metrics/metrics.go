package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	AuthOperationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_operation_count",
			Help: "Total auth operations by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: success, failed
	)

	CodeIssuedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "one_time_code_issued_count",
			Help: "Total one-time codes issued",
		},
		[]string{"purpose"},
	)
)

// GinMiddleware records request duration per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
