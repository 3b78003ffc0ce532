package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/metrics"
	"github.com/naasdev/naas/internal/types"
)

// RequestIDMiddleware carries the caller's X-Request-ID, or a fresh one,
// through the request context and echoes it back
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// RequestLogMiddleware logs one line per request and records it in the
// request metrics
func RequestLogMiddleware(m *metrics.Collector, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// unmatched routes share one label
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		elapsed := time.Since(start)
		status := c.Writer.Status()
		m.ObserveRequest(c.Request.Method, path, status, elapsed)

		log.Debugw("request completed",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			"request_id", types.GetRequestID(c.Request.Context()),
		)
	}
}
