package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-creator/backend/internal/metrics"
)

// RequestLogger logs every request and records its duration.
func RequestLogger(log *slog.Logger, rec metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		rec.RecordHTTPRequest(c.Request.Method, route, status, elapsed)

		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency", elapsed,
		}
		if id, ok := UserID(c); ok {
			attrs = append(attrs, "user_id", id)
		}

		switch {
		case status >= 500:
			log.Error("request", attrs...)
		case status >= 400:
			log.Warn("request", attrs...)
		default:
			log.Info("request", attrs...)
		}
	}
}
