package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"youdl/internal/model"
	"youdl/internal/storage"
	"youdl/pkg/progress"

	"go.uber.org/zap"
)

var (
	// ErrItagNotOffered is returned when the requested itag is not among the video's options
	ErrItagNotOffered = errors.New("requested itag is not offered for this video")
	// ErrFileTooLarge is returned when a stream exceeds the storage size limit
	ErrFileTooLarge = errors.New("file size exceeds maximum limit")
	// ErrFileNotFound is returned for unknown or expired download ids
	ErrFileNotFound = errors.New("file not found")
)

// VideoService serves the pipeline over the API: it resolves videos and
// downloads chosen streams into tracked storage
type VideoService struct {
	pipeline *Pipeline
	storage  *storage.Manager
	log      *zap.Logger
}

// NewVideoService creates a new video service
func NewVideoService(pipeline *Pipeline, sm *storage.Manager, log *zap.Logger) *VideoService {
	return &VideoService{pipeline: pipeline, storage: sm, log: log}
}

// GetVideoInfo resolves a URL into its download options
func (s *VideoService) GetVideoInfo(ctx context.Context, videoURL string) (*model.VideoInfoResponse, error) {
	res, err := s.pipeline.Resolve(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	s.log.Info("Video info retrieved", zap.String("title", res.Title()), zap.Int("options", len(res.Options)))
	return &model.VideoInfoResponse{
		URL:     videoURL,
		VideoID: res.ID.String(),
		Title:   res.Title(),
		Options: res.Options,
	}, nil
}

// Download resolves the URL, downloads the stream with the requested itag and
// starts tracking the file
func (s *VideoService) Download(ctx context.Context, req *model.DownloadRequest) (*model.DownloadResponse, error) {
	res, err := s.pipeline.Resolve(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	opt, ok := res.Options.Take(res.Options.IndexOfItag(req.Itag))
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrItagNotOffered, req.Itag)
	}
	if !s.storage.ValidateFileSize(opt.ContentLength) {
		s.log.Warn("File size exceeds limit", zap.String("title", opt.Title), zap.Int64("size", opt.ContentLength))
		return nil, fmt.Errorf("%w of %dMB", ErrFileTooLarge, s.storage.MaxVideoSizeMB())
	}

	id, dir, err := s.storage.Reserve()
	if err != nil {
		s.log.Error("Failed to create download directory", zap.Error(err))
		return nil, model.Application(err)
	}

	// streams without a declared length are cut off once they pass the limit
	fetchCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	bar := &limitedBar{
		LogBar: progress.NewLogBar(s.log, opt.FileName, 5*time.Second),
		fits:   s.storage.ValidateFileSize,
		cancel: cancel,
	}

	path, err := s.pipeline.Fetch(fetchCtx, opt, dir, bar)
	if err != nil {
		bar.Abort()
		s.storage.Release(id)
		if errors.Is(context.Cause(fetchCtx), ErrFileTooLarge) {
			s.log.Warn("Download exceeded size limit", zap.String("title", opt.Title), zap.Int64("bytes", bar.Current()))
			return nil, fmt.Errorf("%w of %dMB", ErrFileTooLarge, s.storage.MaxVideoSizeMB())
		}
		return nil, err
	}
	if !s.storage.ValidateFileSize(bar.Current()) {
		s.storage.Release(id)
		return nil, fmt.Errorf("%w of %dMB", ErrFileTooLarge, s.storage.MaxVideoSizeMB())
	}

	file := &model.DownloadedFile{
		Filename: opt.FileName,
		FilePath: path,
		Size:     bar.Current(),
		URL:      req.URL,
	}
	s.storage.SaveFile(id, file)

	return &model.DownloadResponse{
		ID:           id,
		Title:        opt.Title,
		FileName:     opt.FileName,
		Size:         file.Size,
		DownloadLink: fmt.Sprintf("/api/download/%s", id),
		ExpiresAt:    file.ExpiresAt.Unix(),
	}, nil
}

// GetDownloadFile retrieves a downloaded file for streaming
func (s *VideoService) GetDownloadFile(id string) (*model.DownloadedFile, error) {
	file := s.storage.GetFile(id)
	if file == nil {
		return nil, ErrFileNotFound
	}
	return file, nil
}

// limitedBar cancels the transfer as soon as the received bytes no longer fit
type limitedBar struct {
	*progress.LogBar
	fits   func(int64) bool
	cancel context.CancelCauseFunc
}

func (b *limitedBar) Add(n int64) {
	b.LogBar.Add(n)
	if !b.fits(b.Current()) {
		b.cancel(ErrFileTooLarge)
	}
}
