package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"youdl/internal/model"

	"github.com/joho/godotenv"
)

// DefaultMetadataEndpoint is the host's video info endpoint
const DefaultMetadataEndpoint = "https://www.youtube.com/get_video_info"

// Load loads configuration from environment variables
func Load() *model.Config {
	godotenv.Load()

	return &model.Config{
		Downloader: model.DownloaderConfig{
			OutputDir:        getEnvStr("OUTPUT_DIR", "."),
			MetadataEndpoint: getEnvStr("METADATA_ENDPOINT", DefaultMetadataEndpoint),
			StreamPolicy:     parseStreamPolicy(getEnvStr("STREAM_POLICY", string(model.PolicyProgressive))),
			ChunkSize:        getEnvInt("CHUNK_SIZE", 32*1024),
			UserAgent:        getEnvStr("USER_AGENT", "youdl/1.0"),
			RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 0),
		},
		Fallback: model.FallbackConfig{
			Tool: getEnvStr("FALLBACK_TOOL", "youtube-dl"),
		},
		Server: model.ServerConfig{
			Port:    getEnvInt("SERVER_PORT", 8080),
			Host:    getEnvStr("SERVER_HOST", "0.0.0.0"),
			Timeout: getEnvInt("SERVER_TIMEOUT", 300),
		},
		Storage: model.StorageConfig{
			DownloadDir:     getEnvStr("DOWNLOAD_DIR", "./downloads"),
			MaxVideoSizeMB:  getEnvInt("MAX_VIDEO_SIZE_MB", 300),
			CleanupInterval: getEnvInt("STORAGE_CLEANUP_INTERVAL", 3600),
			FileTTLSeconds:  getEnvInt("FILE_TTL_SECONDS", 86400),
		},
		Logging: model.LoggingConfig{
			Level:    getEnvStr("LOG_LEVEL", "info"),
			Encoding: getEnvStr("LOG_ENCODING", "console"),
			FilePath: getEnvStr("LOG_FILE", ""),
		},
		Security: model.SecurityConfig{
			AllowedDomains: splitList(getEnvStr("ALLOWED_DOMAINS", "youtube.com,youtu.be")),
		},
		Quota: model.QuotaConfig{
			Enabled:      getEnvBool("QUOTA_ENABLED", false),
			DailyLimitMB: getEnvInt64("QUOTA_DAILY_LIMIT_MB", 1000),
			ResetHour:    getEnvInt("QUOTA_RESET_HOUR", 0),
			ResetMinute:  getEnvInt("QUOTA_RESET_MINUTE", 0),
		},
		RateLimit: model.RateLimitConfig{
			Enabled:           getEnvBool("RATELIMIT_ENABLED", true),
			RequestsPerMinute: getEnvInt("RATELIMIT_REQUESTS_PER_MINUTE", 60),
			BurstSize:         getEnvInt("RATELIMIT_BURST_SIZE", 10),
			CleanupInterval:   getEnvInt("RATELIMIT_CLEANUP_INTERVAL", 1800),
		},
	}
}

// parseStreamPolicy falls back to progressive for unknown values
func parseStreamPolicy(s string) model.StreamPolicy {
	switch model.StreamPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case model.PolicyAll:
		return model.PolicyAll
	default:
		return model.PolicyProgressive
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvStr(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	valStr := getEnvStr(key, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	valStr := getEnvStr(key, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	valStr := strings.ToLower(getEnvStr(key, ""))
	if valStr == "true" || valStr == "1" || valStr == "yes" {
		return true
	}
	if valStr == "false" || valStr == "0" || valStr == "no" {
		return false
	}
	return defaultVal
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	valStr := getEnvStr(key, "")
	if valStr == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(valStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
