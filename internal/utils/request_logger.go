package utils

import (
	"time"

	"groupsync/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request with the real client IP
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log := logger.Named("http")
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"ip", GetRealClientIP(c),
		}
		switch {
		case status >= 500:
			log.Errorw("Request failed", fields...)
		case status >= 400:
			log.Warnw("Request rejected", fields...)
		default:
			log.Debugw("Request", fields...)
		}
	}
}
