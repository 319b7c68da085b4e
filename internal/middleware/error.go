package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into a generic 500. The panic value and stack are
// logged, never returned to the client.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				if c.Writer.Written() {
					c.Abort()
					return
				}
				abortJSON(c, http.StatusInternalServerError, "internal_error", "Internal Server Error")
			}
		}()
		c.Next()
	}
}
