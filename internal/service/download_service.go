package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"youdl/internal/model"
	"youdl/pkg/progress"

	"go.uber.org/zap"
)

// DefaultChunkSize is the read buffer used while streaming to disk
const DefaultChunkSize = 32 * 1024

// DownloadService streams a chosen option from the host to a local file
type DownloadService struct {
	httpClient *http.Client
	userAgent  string
	chunkSize  int
	log        *zap.Logger
}

// NewDownloadService creates a new download service
func NewDownloadService(cfg *model.DownloaderConfig, client *http.Client, log *zap.Logger) *DownloadService {
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	return &DownloadService{
		httpClient: client,
		userAgent:  cfg.UserAgent,
		chunkSize:  chunk,
		log:        log,
	}
}

// Download fetches opt.URL and writes the body to outputDir/opt.FileName,
// reporting every written chunk to bar. The file is created fresh; on failure
// the partial file is left in place. Returns the path of the written file.
func (s *DownloadService) Download(ctx context.Context, opt model.DownloadOption, outputDir string, bar progress.Bar) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opt.URL, nil)
	if err != nil {
		return "", model.InvalidResponse(fmt.Errorf("failed to create request: %w", err))
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Error("Download failed", zap.Error(err), zap.Int("itag", opt.Itag))
		return "", model.InvalidResponse(fmt.Errorf("download failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Warn("Failed download response", zap.Int("status", resp.StatusCode), zap.Int("itag", opt.Itag))
		return "", model.InvalidResponse(fmt.Errorf("stream returned status %d", resp.StatusCode))
	}

	length := resp.ContentLength
	if length < 0 {
		length = progress.UnknownLength
	}
	bar.SetLength(length)

	path := filepath.Join(outputDir, opt.FileName)
	file, err := os.Create(path)
	if err != nil {
		s.log.Error("Failed to create file", zap.Error(err), zap.String("path", path))
		return "", model.Application(fmt.Errorf("failed to create %s: %w", path, err))
	}

	written, err := s.copyChunks(file, resp.Body, bar)
	if err != nil {
		file.Close()
		s.log.Error("Download interrupted", zap.Error(err), zap.String("path", path), zap.Int64("bytes", written))
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", model.Application(fmt.Errorf("failed to close %s: %w", path, err))
	}

	bar.Finish("Successfully downloaded: " + opt.Title)
	s.log.Info("File downloaded", zap.String("path", path), zap.Int64("bytes", written))
	return path, nil
}

// copyChunks writes each chunk before reporting it, so the bar never runs
// ahead of the file
func (s *DownloadService) copyChunks(dst io.Writer, src io.Reader, bar progress.Bar) (int64, error) {
	buf := make([]byte, s.chunkSize)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, model.Application(fmt.Errorf("failed to write file: %w", err))
			}
			written += int64(n)
			bar.Add(int64(n))
		}
		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, model.InvalidResponse(fmt.Errorf("failed to read stream: %w", readErr))
		}
	}
}
