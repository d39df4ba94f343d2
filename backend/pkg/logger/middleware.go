package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// slowRequestThreshold flags a request as worth a Warn even on a 2xx
// status. Proof generation endpoints routinely take seconds, so this is
// generous compared to a typical web API's latency budget.
const slowRequestThreshold = 10 * time.Second

// GinLogger returns a gin middleware for logging HTTP requests
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Calculate latency
		latency := time.Since(start)

		// Get status code
		statusCode := c.Writer.Status()

		// Log request
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", statusCode),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}

		// Add error if present
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}

		// Log based on status code, with a separate allowance for requests
		// that succeeded but ran unusually long (proof generation).
		switch {
		case statusCode >= 500:
			Error("Server error", fields...)
		case statusCode >= 400:
			Warn("Client error", fields...)
		case latency >= slowRequestThreshold:
			Warn("Slow request", fields...)
		default:
			Info("Request completed", fields...)
		}
	}
}

// GinRecovery returns a gin middleware for recovering from panics
func GinRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Error("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.Stack("stack"),
				)
				c.AbortWithStatus(500)
			}
		}()
		c.Next()
	}
}
