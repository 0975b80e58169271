package middleware

import (
	"strconv"
	"time"

	"playlist-exporter/infrastructure/logger"
	"playlist-exporter/infrastructure/metrics"

	"github.com/gin-gonic/gin"
)

const metricsPath = "/metrics"

// RequestMetrics records in-flight requests and request durations by route template
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == metricsPath {
			c.Next()
			return
		}

		start := time.Now()
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		m.RequestDuration.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Observe(elapsed.Seconds())

		logger.GetLogger().WithFields(map[string]interface{}{
			"method":   c.Request.Method,
			"route":    route,
			"status":   status,
			"duration": elapsed.String(),
		}).Debug("Request served")
	}
}
