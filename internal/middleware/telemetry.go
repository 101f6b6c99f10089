package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"stride/internal/telemetry"
)

// RequestTelemetry invokes the metrics hooks around every request: the start
// hook before the handler chain runs and the end hook with status and
// measured duration once it completes.
func RequestTelemetry(tele *telemetry.Telemetry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		tele.Metrics.RecordRequestStart(path, method)

		c.Next()

		duration := time.Since(start).Milliseconds()
		tele.Metrics.RecordRequestEnd(path, method, c.Writer.Status(), duration)
	}
}
