package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/satchat-backend/internal/common/logger"
)

// Logger logs one line per request. Probe endpoints are logged at debug level.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" && !strings.Contains(raw, "init_data") {
			path = path + "?" + raw
		}

		c.Next()

		ev := logger.Info()
		switch c.Request.URL.Path {
		case "/health", "/live", "/ready":
			ev = logger.Debug()
		}
		if userID := getUserID(c); userID != 0 {
			ev = ev.Int64("user_id", userID)
		}
		ev.
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int("body_size", c.Writer.Size()).
			Msg("Request processed")
	}
}
