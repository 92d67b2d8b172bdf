package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"youdl/internal/handler"
	"youdl/internal/model"
	"youdl/internal/service"
	"youdl/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// serve runs the HTTP API until SIGINT or SIGTERM
func serve(cfg *model.Config, log *zap.Logger) error {
	log.Info("Starting youdl server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("stream_policy", string(cfg.Downloader.StreamPolicy)),
	)

	storageManager := storage.NewManager(&cfg.Storage, log)
	if err := storageManager.EnsureDownloadDir(); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	storageManager.Start()
	defer storageManager.Stop()

	pipeline := newPipeline(cfg, log)
	videoService := service.NewVideoService(pipeline, storageManager, log)

	quotaService := service.NewQuotaService(&cfg.Quota, log)
	rateLimitService := service.NewRateLimitService(&cfg.RateLimit, log)
	defer rateLimitService.Stop()

	if cfg.Quota.Enabled {
		log.Info("Quota limiting enabled", zap.Int64("daily_limit_mb", cfg.Quota.DailyLimitMB), zap.Int("reset_hour", cfg.Quota.ResetHour))
	}

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(cfg, log,
		handler.NewVideoHandler(videoService, storageManager, cfg, log),
		handler.NewDownloadHandler(videoService, quotaService, cfg, log),
		rateLimitService,
		quotaService,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.Timeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.Timeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-sigChan:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
	return nil
}
