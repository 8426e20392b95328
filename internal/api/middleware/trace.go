package middleware

import (
	"Lumen/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	traceHeader     = "X-Trace-ID"
	maxTraceIDBytes = 64
)

// TraceMiddleware 沿用调用方传入的 trace id，缺失或过长时重新生成
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeader)
		if traceID == "" || len(traceID) > maxTraceIDBytes {
			traceID = uuid.NewString()
		}

		c.Set(logger.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))

		c.Header(traceHeader, traceID)
		c.Next()
	}
}
