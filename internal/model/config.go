package model

import "time"

// Config holds application configuration
type Config struct {
	Downloader DownloaderConfig
	Fallback   FallbackConfig
	Server     ServerConfig
	Storage    StorageConfig
	Logging    LoggingConfig
	Security   SecurityConfig
	Quota      QuotaConfig
	RateLimit  RateLimitConfig
}

// StreamPolicy decides which stream collections are offered as download options
type StreamPolicy string

const (
	// PolicyProgressive offers only streams carrying both audio and video
	PolicyProgressive StreamPolicy = "progressive"
	// PolicyAll offers progressive and adaptive (audio-only / video-only) streams
	PolicyAll StreamPolicy = "all"
)

// IncludesAdaptive reports whether adaptive streams are accepted by the policy
func (p StreamPolicy) IncludesAdaptive() bool {
	return p == PolicyAll
}

// DownloaderConfig holds the resolution-and-streaming pipeline configuration
type DownloaderConfig struct {
	OutputDir        string
	MetadataEndpoint string
	StreamPolicy     StreamPolicy
	ChunkSize        int
	UserAgent        string
	RequestTimeout   time.Duration // zero means transport default
}

// FallbackConfig names the external legacy downloader recommended for unsupported videos
type FallbackConfig struct {
	Tool string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    int
	Host    string
	Timeout int // seconds
}

// StorageConfig holds storage configuration for files downloaded through the API
type StorageConfig struct {
	DownloadDir     string
	MaxVideoSizeMB  int
	CleanupInterval int // seconds
	FileTTLSeconds  int // Time to live for downloaded files
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string
	Encoding string // console or json
	FilePath string // empty disables file output
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	AllowedDomains []string
}

// QuotaConfig holds per-IP download quota configuration
type QuotaConfig struct {
	Enabled      bool
	DailyLimitMB int64
	ResetHour    int // Hour (0-23) the quota resets
	ResetMinute  int
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstSize         int
	CleanupInterval   int // seconds
}

// CLIArgs holds the parsed command line of a download run
type CLIArgs struct {
	URLs         []string
	FromFilePath string
	OutputDir    string
	UseWrapper   bool
	AllStreams   bool
	PickFirst    bool
}
