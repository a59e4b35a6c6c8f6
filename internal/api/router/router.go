package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gpa-calculator/backend/config"
	"gpa-calculator/backend/internal/api/handler"
	"gpa-calculator/backend/internal/api/middleware"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时计算接口不限流
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	{
		// 健康检查
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// 课程目录
		modules := v1.Group("/modules")
		{
			modules.GET("", h.Module.ListModules)
			modules.GET("/:id", h.Module.GetModule)
			modules.POST("", h.Module.CreateModule)
			modules.POST("/import", h.Module.ImportModules)
			modules.PUT("/:id", h.Module.UpdateModule)
			modules.DELETE("/:id", h.Module.DeleteModule)
		}

		// 专业方向
		specializations := v1.Group("/specializations")
		{
			specializations.GET("", h.Specialization.ListSpecializations)
			specializations.POST("", h.Specialization.CreateSpecialization)
			specializations.GET("/:identifier", h.Specialization.GetSpecialization)
			specializations.GET("/:identifier/modules", h.Specialization.GetSpecializationModules)
		}

		// GPA 计算（按 IP 限流）
		calculate := v1.Group("/calculate")
		calculate.Use(middleware.RateLimit(limiter, cfg.RateLimit.CalculatePerMinute, time.Minute, logger))
		{
			calculate.POST("/gpa", h.Calculate.CalculateGPA)
			calculate.POST("/report", h.Calculate.Report)
			calculate.POST("/report/export", h.Calculate.ExportReport)
		}
	}

	return r
}
