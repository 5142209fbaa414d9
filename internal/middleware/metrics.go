package middleware

import (
	"strconv"
	"time"

	"github.com/SscSPs/inventory_management_app/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// RequestMetrics records the duration of each request by route template.
func RequestMetrics(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(service, c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
