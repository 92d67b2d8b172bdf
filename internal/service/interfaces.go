package service

import (
	"context"
	"net/http"

	"youdl/internal/model"
	"youdl/pkg/progress"
)

// MetadataFetcher retrieves the metadata record of a video
type MetadataFetcher interface {
	Fetch(ctx context.Context, id model.VideoID) (*model.PlayerResponse, error)
}

// StreamDownloader transfers one chosen stream into a directory
type StreamDownloader interface {
	Download(ctx context.Context, opt model.DownloadOption, outputDir string, bar progress.Bar) (string, error)
}

// NewHTTPClient returns the client shared by metadata and stream requests.
// A zero RequestTimeout leaves the transport defaults in place.
func NewHTTPClient(cfg *model.DownloaderConfig) *http.Client {
	return &http.Client{Timeout: cfg.RequestTimeout}
}
