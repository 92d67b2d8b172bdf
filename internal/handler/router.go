package handler

import (
	"youdl/internal/model"
	"youdl/internal/service"
	"youdl/pkg/logger"
	"youdl/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the API routes and middleware
func NewRouter(cfg *model.Config, log *zap.Logger, vh *VideoHandler, dh *DownloadHandler, rls *service.RateLimitService, qs *service.QuotaService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLogger(log))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimitMiddleware(rls, log))
		log.Info("Rate limiting enabled", zap.Int("requests_per_minute", cfg.RateLimit.RequestsPerMinute))
	}

	api := router.Group("/api")
	{
		api.GET("/video/info", vh.GetVideoInfo)

		api.POST("/download", middleware.QuotaCheckMiddleware(qs, log), dh.StartDownload)
		api.GET("/download/:id", dh.GetFile)

		api.GET("/health", vh.HealthCheck)
	}

	return router
}
