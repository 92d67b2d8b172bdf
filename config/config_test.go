package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"youdl/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"OUTPUT_DIR", "STREAM_POLICY", "CHUNK_SIZE", "REQUEST_TIMEOUT", "FALLBACK_TOOL", "METADATA_ENDPOINT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.Downloader.OutputDir != "." {
		t.Errorf("OutputDir = %q, want .", cfg.Downloader.OutputDir)
	}
	if cfg.Downloader.StreamPolicy != model.PolicyProgressive {
		t.Errorf("StreamPolicy = %q, want progressive", cfg.Downloader.StreamPolicy)
	}
	if cfg.Downloader.ChunkSize != 32*1024 {
		t.Errorf("ChunkSize = %d", cfg.Downloader.ChunkSize)
	}
	if cfg.Downloader.RequestTimeout != 0 {
		t.Errorf("RequestTimeout = %v, want none", cfg.Downloader.RequestTimeout)
	}
	if cfg.Downloader.MetadataEndpoint != DefaultMetadataEndpoint {
		t.Errorf("MetadataEndpoint = %q", cfg.Downloader.MetadataEndpoint)
	}
	if cfg.Fallback.Tool != "youtube-dl" {
		t.Errorf("Fallback.Tool = %q", cfg.Fallback.Tool)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STREAM_POLICY", "ALL")
	t.Setenv("REQUEST_TIMEOUT", "45")
	t.Setenv("ALLOWED_DOMAINS", " youtube.com , ,youtu.be")

	cfg := Load()
	if cfg.Downloader.StreamPolicy != model.PolicyAll {
		t.Errorf("StreamPolicy = %q, want all", cfg.Downloader.StreamPolicy)
	}
	if cfg.Downloader.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.Downloader.RequestTimeout)
	}
	want := []string{"youtube.com", "youtu.be"}
	if !reflect.DeepEqual(cfg.Security.AllowedDomains, want) {
		t.Errorf("AllowedDomains = %v, want %v", cfg.Security.AllowedDomains, want)
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want time.Duration
	}{
		{"go duration", "1m30s", 90 * time.Second},
		{"seconds", "10", 10 * time.Second},
		{"garbage", "soon", 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.val)
			if got := getEnvDuration("TEST_DURATION", 5*time.Second); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func testConfig() *model.Config {
	return &model.Config{
		Downloader: model.DownloaderConfig{OutputDir: ".", StreamPolicy: model.PolicyProgressive},
		Fallback:   model.FallbackConfig{Tool: "youtube-dl"},
	}
}

func TestParseArgs(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "urls.txt")
	content := "# queue\nhttps://youtu.be/aaaaaaaaaaa\n\n  https://youtu.be/bbbbbbbbbbb  \n"
	if err := os.WriteFile(listPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		policy     model.StreamPolicy
		args       []string
		wantURLs   []string
		wantDir    string
		wantPolicy model.StreamPolicy
		wantFirst  bool
		wantWrap   bool
		wantErr    error
	}{
		{
			name:       "positional",
			args:       []string{"https://youtu.be/ccccccccccc"},
			wantURLs:   []string{"https://youtu.be/ccccccccccc"},
			wantDir:    ".",
			wantPolicy: model.PolicyProgressive,
		},
		{
			name:       "short flags and file",
			args:       []string{"-o", "/tmp/out", "-f", listPath, "-w", "https://youtu.be/ccccccccccc"},
			wantURLs:   []string{"https://youtu.be/ccccccccccc", "https://youtu.be/aaaaaaaaaaa", "https://youtu.be/bbbbbbbbbbb"},
			wantDir:    "/tmp/out",
			wantPolicy: model.PolicyProgressive,
			wantWrap:   true,
		},
		{
			name:       "long flags",
			args:       []string{"--output-dir", "out", "--all-streams", "--first", "https://youtu.be/ccccccccccc"},
			wantURLs:   []string{"https://youtu.be/ccccccccccc"},
			wantDir:    "out",
			wantPolicy: model.PolicyAll,
			wantFirst:  true,
		},
		{
			name:       "policy from environment",
			policy:     model.PolicyAll,
			args:       []string{"https://youtu.be/ccccccccccc"},
			wantURLs:   []string{"https://youtu.be/ccccccccccc"},
			wantDir:    ".",
			wantPolicy: model.PolicyAll,
		},
		{
			name:       "flag disables environment policy",
			policy:     model.PolicyAll,
			args:       []string{"--all-streams=false", "https://youtu.be/ccccccccccc"},
			wantURLs:   []string{"https://youtu.be/ccccccccccc"},
			wantDir:    ".",
			wantPolicy: model.PolicyProgressive,
		},
		{
			name:    "no urls",
			args:    []string{"-o", "out"},
			wantErr: ErrNoURLs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.policy != "" {
				cfg.Downloader.StreamPolicy = tt.policy
			}
			got, err := ParseArgs(tt.args, cfg, io.Discard)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseArgs() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseArgs() error = %v", err)
			}
			if !reflect.DeepEqual(got.URLs, tt.wantURLs) {
				t.Errorf("URLs = %v, want %v", got.URLs, tt.wantURLs)
			}
			if cfg.Downloader.OutputDir != tt.wantDir {
				t.Errorf("OutputDir = %q, want %q", cfg.Downloader.OutputDir, tt.wantDir)
			}
			if cfg.Downloader.StreamPolicy != tt.wantPolicy {
				t.Errorf("StreamPolicy = %q, want %q", cfg.Downloader.StreamPolicy, tt.wantPolicy)
			}
			if got.PickFirst != tt.wantFirst || got.UseWrapper != tt.wantWrap {
				t.Errorf("PickFirst/UseWrapper = %v/%v", got.PickFirst, got.UseWrapper)
			}
		})
	}
}

func TestReadURLFileMissing(t *testing.T) {
	if _, err := ReadURLFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
