package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LanceHuang1/course-web-app/config"
	"github.com/LanceHuang1/course-web-app/internal/api/handler"
	"github.com/LanceHuang1/course-web-app/internal/api/middleware"
	"github.com/LanceHuang1/course-web-app/pkg/response"
)

// Setup 初始化并返回 Gin 路由引擎
//
// limiter 为 nil 时写操作不限流（未启用 Redis）。
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

	// ── 健康检查 ──
	// Redis 仅用于限流，不可用时服务仍视为健康
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": redisStatus(c.Request.Context(), limiter)})
	})

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, response.CodeRouteNotFound, "接口不存在")
	})

	// 写操作限流
	limited := middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 课程模块
		courses := v1.Group("/courses")
		{
			courses.GET("", h.Course.ListCourses)
			courses.GET("/:id", h.Course.GetCourse)
			courses.GET("/:id/copy", h.Course.CopyCourse)
			courses.POST("", limited, h.Course.CreateCourse)
			courses.PUT("/:id", limited, h.Course.UpdateCourse)
			courses.PATCH("/:id/time", limited, h.Course.RescheduleCourse)
			courses.DELETE("/:id", limited, h.Course.DeleteCourse)
			courses.POST("/:id/repeat", limited, h.Course.RepeatCourse)
		}

		// 时数统计与联想
		v1.GET("/reports/hours", h.Report.GetHours)
		v1.GET("/suggestions", h.Report.GetSuggestions)

		// 日历模块
		calendar := v1.Group("/calendar")
		{
			calendar.GET("/events", h.Calendar.ListEvents)
			calendar.GET("/export.ics", h.Calendar.ExportICS)
			calendar.POST("/import", limited, h.Calendar.ImportICS)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/courses", h.Export.ExportCourses)
		}
	}

	return r
}

// pinger 由 pkg/redis.Client 实现
type pinger interface {
	Ping(ctx context.Context) error
}

// redisStatus disabled | up | down
func redisStatus(ctx context.Context, limiter middleware.RateLimiter) string {
	p, ok := limiter.(pinger)
	if !ok {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
