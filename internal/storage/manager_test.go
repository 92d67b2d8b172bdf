package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"youdl/internal/model"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func newTestManager(t *testing.T, ttlSeconds int) *Manager {
	t.Helper()
	cfg := &model.StorageConfig{
		DownloadDir:     filepath.Join(t.TempDir(), "downloads"),
		MaxVideoSizeMB:  1,
		CleanupInterval: 3600,
		FileTTLSeconds:  ttlSeconds,
	}
	m := NewManager(cfg, zaptest.NewLogger(t))
	if err := m.EnsureDownloadDir(); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestReserveAndSave(t *testing.T) {
	m := newTestManager(t, 60)

	id, dir, err := m.Reserve()
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("reserved dir missing: %v", err)
	}

	id2, dir2, _ := m.Reserve()
	if id == id2 || dir == dir2 {
		t.Fatalf("Reserve() returned duplicate id %q", id)
	}

	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	m.SaveFile(id, &model.DownloadedFile{Filename: "clip.mp4", FilePath: path, Size: 4})

	got := m.GetFile(id)
	if got == nil || got.ID != id || got.ExpiresAt.Sub(got.CreatedAt) != time.Minute {
		t.Fatalf("GetFile() = %+v", got)
	}
	if m.GetFile(id2) != nil {
		t.Error("untracked id returned a file")
	}
	if n := m.TrackedFilesCount(); n != 1 {
		t.Errorf("TrackedFilesCount() = %d", n)
	}

	m.Release(id2)
	if _, err := os.Stat(dir2); !os.IsNotExist(err) {
		t.Errorf("released dir still present: %v", err)
	}
}

func TestCleanupExpired(t *testing.T) {
	m := newTestManager(t, 0)

	id, dir, err := m.Reserve()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	m.SaveFile(id, &model.DownloadedFile{Filename: "clip.mp4", FilePath: path})
	time.Sleep(5 * time.Millisecond)

	if m.GetFile(id) != nil {
		t.Error("expired file still served")
	}
	if n := m.CleanupExpired(); n != 1 {
		t.Fatalf("CleanupExpired() = %d, want 1", n)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expired download dir not removed: %v", err)
	}
	if m.TrackedFilesCount() != 0 {
		t.Error("expired file still tracked")
	}
}

func TestValidateFileSize(t *testing.T) {
	m := newTestManager(t, 60)
	if !m.ValidateFileSize(1024 * 1024) {
		t.Error("1 MiB should be allowed")
	}
	if m.ValidateFileSize(1024*1024 + 1) {
		t.Error("over limit should be rejected")
	}
}

func TestStartStop(t *testing.T) {
	m := newTestManager(t, 60)
	m.log = zap.NewNop()
	m.Start()
	m.Stop()
	m.Stop()
}

func TestDiskUsage(t *testing.T) {
	m := newTestManager(t, 60)
	usage, err := m.DiskUsage()
	if err != nil {
		t.Skipf("disk usage unavailable: %v", err)
	}
	if usage.TotalBytes == 0 {
		t.Errorf("TotalBytes = 0")
	}
}
