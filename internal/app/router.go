package app

import (
	"flightprep_backend/internal/config"
	"flightprep_backend/internal/middleware"
	"flightprep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 需要授权的路由。任意已认证请求顺带刷新会话活动时间
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(a.services.session))
	{
		sessions := authGroup.Group("/sessions")
		{
			sessions.POST("/start", c.session.Start)
			sessions.POST("/activity", c.session.Activity)
			sessions.POST("/pause", c.session.Pause)
			sessions.POST("/resume", c.session.Resume)
			sessions.PATCH("/feedback", c.session.Feedback)
			sessions.POST("/end", c.session.End)
			sessions.GET("/current", c.session.Current)
		}

		authGroup.POST("/tests/results", c.analytics.SubmitTestResults)

		analytics := authGroup.Group("/analytics")
		{
			analytics.GET("/weak-areas", c.analytics.GetWeakAreas)
			analytics.GET("/recommendations", c.analytics.GetRecommendations)
			analytics.GET("/dashboard", c.analytics.GetDashboard)
			analytics.GET("/session-metrics", c.analytics.GetSessionMetrics)
			analytics.GET("/test-history", c.analytics.GetTestHistory)
			analytics.GET("/progress/:subject", c.analytics.GetSubjectProgress)
		}
	}
}
