package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RequestLogger logs every request: method, path, status, latency and client IP.
func RequestLogger(c *gin.Context) {
	start := time.Now()
	path := c.Request.URL.Path
	raw := c.Request.URL.RawQuery
	clientIP := c.ClientIP()
	method := c.Request.Method

	c.Next()

	if raw != "" {
		path = path + "?" + raw
	}
	log.Info().
		Str("component", "http").
		Str("method", method).
		Str("path", path).
		Int("status", c.Writer.Status()).
		Str("ip", clientIP).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("request")
}
