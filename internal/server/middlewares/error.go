package middlewares

import (
	"github.com/gin-gonic/gin"

	"rbx/logicore/internal/server/ginx"
	"rbx/logicore/pkg/logger"
)

// ErrorHandler 统一错误处理中间件
// 捕获 panic（500），以及 handler 通过 c.Error 记录但未写响应的错误
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "[HTTP] panic recovered: %v", r)
				if !c.Writer.Written() {
					ginx.InternalError(c, "internal server error")
				}
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			ginx.FromError(c, c.Errors.Last().Err)
		}
	}
}
