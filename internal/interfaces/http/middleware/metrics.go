package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"dvlottery.backend/internal/infrastructure/metrics"
)

const unmatchedRoute = "unmatched"

// MetricsMiddleware records request counts and latency per route template.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
