package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"youdl/internal/model"

	"go.uber.org/zap"
)

// maxMetadataBytes bounds the metadata response body
const maxMetadataBytes = 16 << 20

var errNoPlayerResponse = errors.New("response has no player_response field")

// MetadataService fetches video metadata from the host's video info endpoint
type MetadataService struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	log        *zap.Logger
}

// NewMetadataService creates a new metadata service
func NewMetadataService(cfg *model.DownloaderConfig, client *http.Client, log *zap.Logger) *MetadataService {
	return &MetadataService{
		endpoint:   cfg.MetadataEndpoint,
		userAgent:  cfg.UserAgent,
		httpClient: client,
		log:        log,
	}
}

// Fetch performs exactly one request for the video's metadata and decodes it.
// Every failure is a KindInvalidResponse error.
func (s *MetadataService) Fetch(ctx context.Context, id model.VideoID) (*model.PlayerResponse, error) {
	endpoint, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, model.InvalidResponse(fmt.Errorf("invalid metadata endpoint: %w", err))
	}
	q := endpoint.Query()
	q.Set("video_id", id.String())
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, model.InvalidResponse(fmt.Errorf("failed to create request: %w", err))
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Error("Failed to fetch video info", zap.Error(err), zap.String("video_id", id.String()))
		return nil, model.InvalidResponse(fmt.Errorf("failed to fetch video info: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Warn("Non-OK status from metadata endpoint",
			zap.Int("status", resp.StatusCode),
			zap.String("video_id", id.String()),
		)
		return nil, model.InvalidResponse(fmt.Errorf("metadata endpoint returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataBytes))
	if err != nil {
		return nil, model.InvalidResponse(fmt.Errorf("failed to read video info: %w", err))
	}

	pr, err := DecodeVideoInfo(body)
	if err != nil {
		s.log.Error("Failed to decode video info", zap.Error(err), zap.String("video_id", id.String()))
		return nil, err
	}

	s.log.Debug("Video info retrieved",
		zap.String("video_id", id.String()),
		zap.String("title", pr.VideoDetails.Title),
		zap.Int("formats", len(pr.StreamingData.Formats)),
		zap.Int("adaptive_formats", len(pr.StreamingData.AdaptiveFormats)),
	)
	return pr, nil
}

// DecodeVideoInfo decodes the URL-encoded envelope and the JSON record in its
// player_response field. Malformed neighbouring fields are skipped.
func DecodeVideoInfo(body []byte) (*model.PlayerResponse, error) {
	values, err := url.ParseQuery(string(body))
	if !values.Has("player_response") {
		if err != nil {
			return nil, model.InvalidResponse(fmt.Errorf("failed to parse video info: %w", err))
		}
		return nil, model.InvalidResponse(errNoPlayerResponse)
	}

	var pr model.PlayerResponse
	if err := json.Unmarshal([]byte(values.Get("player_response")), &pr); err != nil {
		return nil, model.InvalidResponse(fmt.Errorf("failed to decode player_response: %w", err))
	}
	return &pr, nil
}
