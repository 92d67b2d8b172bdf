package handler

import (
	"net/http"

	"youdl/internal/model"
	"youdl/internal/service"
	"youdl/internal/storage"
	"youdl/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VideoHandler handles video-related requests
type VideoHandler struct {
	videoService *service.VideoService
	storage      *storage.Manager
	cfg          *model.Config
	log          *zap.Logger
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(vs *service.VideoService, sm *storage.Manager, cfg *model.Config, log *zap.Logger) *VideoHandler {
	return &VideoHandler{
		videoService: vs,
		storage:      sm,
		cfg:          cfg,
		log:          log,
	}
}

// GetVideoInfo handles GET /api/video/info
func (h *VideoHandler) GetVideoInfo(c *gin.Context) {
	videoURL := c.Query("url")

	if videoURL == "" {
		h.log.Warn("Empty URL provided")
		respondBadRequest(c, "invalid_url", "Video URL is required")
		return
	}

	if !validator.ValidateURL(videoURL, h.cfg.Security.AllowedDomains) {
		h.log.Warn("Invalid URL domain",
			zap.String("url", videoURL),
			zap.Strings("allowed_domains", h.cfg.Security.AllowedDomains))
		respondBadRequest(c, "invalid_domain", "URL domain is not allowed")
		return
	}

	videoInfo, err := h.videoService.GetVideoInfo(c.Request.Context(), videoURL)
	if err != nil {
		h.log.Error("Failed to get video info", zap.Error(err), zap.String("url", videoURL))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, videoInfo)
}

// HealthCheck handles GET /api/health
func (h *VideoHandler) HealthCheck(c *gin.Context) {
	resp := gin.H{
		"status":        "healthy",
		"service":       "youdl",
		"tracked_files": h.storage.TrackedFilesCount(),
		"stream_policy": h.cfg.Downloader.StreamPolicy,
	}

	usage, err := h.storage.DiskUsage()
	if err != nil {
		h.log.Warn("Failed to read disk usage", zap.Error(err))
	} else {
		resp["disk"] = usage
	}

	c.JSON(http.StatusOK, resp)
}
