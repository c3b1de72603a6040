package routers

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"rbx/logicore/internal/server/handlers/quote"
	"rbx/logicore/internal/server/middlewares"
	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/logger"
)

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(cfg config.ServerConfig, quoteHandler *quote.QuoteHandler, log logger.Logger) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	useJSONFieldNames()

	r := gin.New()

	r.Use(middlewares.RequestID())
	r.Use(middlewares.Logger(log))
	r.Use(middlewares.ErrorHandler(log))
	r.Use(middlewares.CORS(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "logicore",
			"message": "Service is running",
		})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/rates/quote", quoteHandler.Quote)
		v1.GET("/zones", quoteHandler.Zone)

		quotes := v1.Group("/quotes")
		{
			quotes.POST("", quoteHandler.Create)
			quotes.GET("/:id", quoteHandler.Get)
		}
	}

	return r
}

// useJSONFieldNames 校验错误里的字段名使用 json 名（weight_kg 而不是 WeightKg）
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
