package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rbx/logicore/pkg/logger"
)

// HeaderRequestID 请求 ID 头
const HeaderRequestID = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID 为每个请求生成（或沿用）请求 ID，并写入 request context 作为 trace_id
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" || len(rid) > 64 {
			rid = uuid.New().String()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), rid))
		c.Next()
	}
}

// GetRequestID 从 gin context 取请求 ID
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
