package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"rbx/logicore/pkg/logger"
)

// Logger 访问日志
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ctx := c.Request.Context()
		format := "[HTTP] method=%s path=%s status=%d latency=%v ip=%s"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, status, time.Since(start), c.ClientIP()}

		switch {
		case status >= 500:
			log.Errorf(ctx, format, args...)
		case status >= 400:
			log.Warnf(ctx, format, args...)
		default:
			log.Infof(ctx, format, args...)
		}
	}
}
