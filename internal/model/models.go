package model

import "time"

// VideoID identifies a video on the host. Values come from validator.ExtractVideoID.
type VideoID string

// String returns the raw identifier
func (id VideoID) String() string {
	return string(id)
}

// PlayerResponse is the decoded metadata record the host returns for a video
type PlayerResponse struct {
	PlayabilityStatus PlayabilityStatus `json:"playabilityStatus"`
	VideoDetails      VideoDetails      `json:"videoDetails"`
	StreamingData     StreamingData     `json:"streamingData"`
}

// PlayabilityStatus reports whether the host is willing to serve the video
type PlayabilityStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Playable reports whether the host marked the video as playable
func (s PlayabilityStatus) Playable() bool {
	return s.Status == "" || s.Status == "OK"
}

// VideoDetails contains descriptive metadata
type VideoDetails struct {
	VideoID       string `json:"videoId"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	LengthSeconds string `json:"lengthSeconds"`
}

// StreamingData holds the stream descriptor collections
type StreamingData struct {
	ExpiresInSeconds string   `json:"expiresInSeconds"`
	Formats          []Format `json:"formats"`
	AdaptiveFormats  []Format `json:"adaptiveFormats"`
}

// Format describes one stream variant as declared by the host
type Format struct {
	Itag            int    `json:"itag"`
	URL             string `json:"url"`
	MimeType        string `json:"mimeType"`
	Bitrate         int    `json:"bitrate"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	FPS             int    `json:"fps"`
	ContentLength   string `json:"contentLength"`
	Quality         string `json:"quality"`
	QualityLabel    string `json:"qualityLabel"`
	AudioQuality    string `json:"audioQuality"`
	AudioSampleRate string `json:"audioSampleRate"`
	Cipher          string `json:"cipher"`
	SignatureCipher string `json:"signatureCipher"`
}

// Ciphered reports whether the stream URL needs a signature to be solved first
func (f Format) Ciphered() bool {
	return f.Cipher != "" || f.SignatureCipher != ""
}

// DownloadOption is one directly fetchable stream
type DownloadOption struct {
	Itag          int    `json:"itag"`
	Label         string `json:"label"`
	URL           string `json:"-"`
	Title         string `json:"title"`
	FileName      string `json:"file_name"`
	MimeType      string `json:"mime_type"`
	Quality       string `json:"quality"` // FHD, HD, SD, FD, Audio
	Adaptive      bool   `json:"adaptive"`
	ContentLength int64  `json:"content_length,omitempty"`
}

// String returns the label shown to users
func (o DownloadOption) String() string {
	return o.Label
}

// DownloadOptions is the ordered list of options for one video
type DownloadOptions []DownloadOption

// Labels returns the option labels in order
func (opts DownloadOptions) Labels() []string {
	labels := make([]string, len(opts))
	for i, o := range opts {
		labels[i] = o.Label
	}
	return labels
}

// Title returns the video title shared by every option
func (opts DownloadOptions) Title() string {
	if len(opts) == 0 {
		return ""
	}
	return opts[0].Title
}

// IndexOfItag returns the position of the option with the given itag, or -1
func (opts DownloadOptions) IndexOfItag(itag int) int {
	for i, o := range opts {
		if o.Itag == itag {
			return i
		}
	}
	return -1
}

// Take removes the option at index i and returns it
func (opts *DownloadOptions) Take(i int) (DownloadOption, bool) {
	list := *opts
	if i < 0 || i >= len(list) {
		return DownloadOption{}, false
	}
	chosen := list[i]
	*opts = append(list[:i:i], list[i+1:]...)
	return chosen, true
}

// VideoInfoResponse is returned by GET /api/video/info
type VideoInfoResponse struct {
	URL     string          `json:"url"`
	VideoID string          `json:"video_id"`
	Title   string          `json:"title"`
	Options DownloadOptions `json:"options"`
}

// DownloadRequest represents a download request made through the API
type DownloadRequest struct {
	URL  string `json:"url" binding:"required"`
	Itag int    `json:"itag" binding:"required"`
}

// DownloadResponse represents the response to a download request
type DownloadResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	FileName     string `json:"file_name"`
	Size         int64  `json:"size"`
	DownloadLink string `json:"download_link"`
	ExpiresAt    int64  `json:"expires_at"`
}

// DownloadedFile tracks downloaded files for cleanup
type DownloadedFile struct {
	ID        string
	Filename  string
	FilePath  string
	Size      int64
	CreatedAt time.Time
	ExpiresAt time.Time
	URL       string
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
	Code    int    `json:"code"`
}
