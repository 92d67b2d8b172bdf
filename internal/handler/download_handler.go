package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"youdl/internal/model"
	"youdl/internal/service"
	"youdl/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DownloadHandler handles download-related requests
type DownloadHandler struct {
	videoService *service.VideoService
	quotaService *service.QuotaService
	cfg          *model.Config
	log          *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(vs *service.VideoService, qs *service.QuotaService, cfg *model.Config, log *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		videoService: vs,
		quotaService: qs,
		cfg:          cfg,
		log:          log,
	}
}

// StartDownload handles POST /api/download
func (h *DownloadHandler) StartDownload(c *gin.Context) {
	var req model.DownloadRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid download request", zap.Error(err))
		respondBadRequest(c, "invalid_request", "Invalid request format")
		return
	}

	if !validator.ValidateURL(req.URL, h.cfg.Security.AllowedDomains) {
		h.log.Warn("Invalid URL domain", zap.String("url", req.URL))
		respondBadRequest(c, "invalid_domain", "URL domain is not allowed")
		return
	}

	if req.Itag <= 0 {
		h.log.Warn("Invalid itag", zap.Int("itag", req.Itag))
		respondBadRequest(c, "invalid_itag", "Invalid itag")
		return
	}

	// a started download runs to completion even if the client goes away
	ctx := context.WithoutCancel(c.Request.Context())
	downloadResp, err := h.videoService.Download(ctx, &req)
	if err != nil {
		h.log.Error("Download failed", zap.Error(err), zap.String("url", req.URL), zap.Int("itag", req.Itag))
		respondError(c, err)
		return
	}

	if h.quotaService.Enabled() {
		clientIP := c.ClientIP()
		h.quotaService.AddUsage(clientIP, downloadResp.Size)
		info := h.quotaService.GetQuotaInfo(clientIP)
		c.Header("X-Quota-Remaining-MB", fmt.Sprintf("%d", info.RemainingMB))
	}

	c.JSON(http.StatusOK, downloadResp)
}

// GetFile handles GET /api/download/:id
func (h *DownloadHandler) GetFile(c *gin.Context) {
	fileID := c.Param("id")

	file, err := h.videoService.GetDownloadFile(fileID)
	if err != nil {
		h.log.Warn("File not found", zap.String("file_id", fileID))
		respondError(c, err)
		return
	}

	if _, err := os.Stat(file.FilePath); err != nil {
		h.log.Warn("File does not exist", zap.String("path", file.FilePath))
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Error:   "not_found",
			Message: "File no longer available",
			Code:    http.StatusNotFound,
		})
		return
	}

	c.Header("Content-Disposition", buildContentDispositionHeader(file.Filename))
	c.Header("Content-Type", "application/octet-stream")
	c.File(file.FilePath)

	h.log.Info("File downloaded by user",
		zap.String("file_id", fileID),
		zap.String("filename", file.Filename))
}

// buildContentDispositionHeader builds a Content-Disposition header, using
// RFC 5987 encoding for non-ASCII and special characters
func buildContentDispositionHeader(filename string) string {
	needsEncoding := strings.ContainsAny(filename, " \t\n\r\"\\;,")
	for _, r := range filename {
		if r > 127 {
			needsEncoding = true
			break
		}
	}

	if !needsEncoding {
		return fmt.Sprintf(`attachment; filename="%s"`, filename)
	}
	return fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename))
}
