package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"youdl/internal/model"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"
)

// DiskUsage describes the filesystem holding the download directory
type DiskUsage struct {
	Path        string  `json:"path"`
	TotalBytes  uint64  `json:"total_bytes"`
	FreeBytes   uint64  `json:"free_bytes"`
	UsedPercent float64 `json:"used_percent"`
}

// Manager tracks files downloaded through the API and removes them once
// their TTL has passed. Every download gets its own directory so equal
// titles never collide.
type Manager struct {
	cfg      *model.StorageConfig
	files    map[string]*model.DownloadedFile
	mu       sync.RWMutex
	quitChan chan struct{}
	stopOnce sync.Once
	log      *zap.Logger
}

// NewManager creates a new storage manager
func NewManager(cfg *model.StorageConfig, log *zap.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		files:    make(map[string]*model.DownloadedFile),
		quitChan: make(chan struct{}),
		log:      log,
	}
}

// Start starts the cleanup routine
func (m *Manager) Start() {
	go m.cleanupRoutine()
}

// Stop stops the cleanup routine
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.quitChan) })
}

// EnsureDownloadDir ensures download directory exists
func (m *Manager) EnsureDownloadDir() error {
	return os.MkdirAll(m.cfg.DownloadDir, 0755)
}

// Reserve allocates an id and an empty directory for a new download
func (m *Manager) Reserve() (string, string, error) {
	id := uuid.NewString()
	dir := filepath.Join(m.cfg.DownloadDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", err
	}
	return id, dir, nil
}

// Release removes a reserved directory that never became a tracked file
func (m *Manager) Release(id string) {
	if err := os.RemoveAll(filepath.Join(m.cfg.DownloadDir, id)); err != nil {
		m.log.Warn("Failed to release download dir", zap.String("id", id), zap.Error(err))
	}
}

// SaveFile starts tracking a downloaded file
func (m *Manager) SaveFile(id string, file *model.DownloadedFile) {
	now := time.Now()
	file.ID = id
	file.CreatedAt = now
	file.ExpiresAt = now.Add(m.FileTTL())

	m.mu.Lock()
	m.files[id] = file
	m.mu.Unlock()

	m.log.Info("File saved", zap.String("id", id), zap.String("filename", file.Filename), zap.Int64("size", file.Size))
}

// GetFile gets file info by ID. Expired files are not returned.
func (m *Manager) GetFile(id string) *model.DownloadedFile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	file, ok := m.files[id]
	if !ok || time.Now().After(file.ExpiresAt) {
		return nil
	}
	return file
}

// ValidateFileSize checks if file size is within limits
func (m *Manager) ValidateFileSize(sizeBytes int64) bool {
	if m.cfg.MaxVideoSizeMB <= 0 {
		return true
	}
	return sizeBytes <= int64(m.cfg.MaxVideoSizeMB)*1024*1024
}

// MaxVideoSizeMB returns the configured size limit
func (m *Manager) MaxVideoSizeMB() int {
	return m.cfg.MaxVideoSizeMB
}

// FileTTL returns how long downloaded files are kept
func (m *Manager) FileTTL() time.Duration {
	return time.Duration(m.cfg.FileTTLSeconds) * time.Second
}

// TrackedFilesCount returns the number of files currently being tracked
func (m *Manager) TrackedFilesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// DiskUsage reports usage of the filesystem holding the download directory
func (m *Manager) DiskUsage() (*DiskUsage, error) {
	usage, err := disk.Usage(m.cfg.DownloadDir)
	if err != nil {
		return nil, err
	}
	return &DiskUsage{
		Path:        usage.Path,
		TotalBytes:  usage.Total,
		FreeBytes:   usage.Free,
		UsedPercent: usage.UsedPercent,
	}, nil
}

// cleanupRoutine periodically removes expired files
func (m *Manager) cleanupRoutine() {
	interval := time.Duration(m.cfg.CleanupInterval) * time.Second
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.log.Info("Storage cleanup routine started",
		zap.Duration("cleanup_interval", interval),
		zap.Duration("file_ttl", m.FileTTL()))

	for {
		select {
		case <-m.quitChan:
			m.log.Info("Storage cleanup routine stopped")
			return
		case <-ticker.C:
			m.CleanupExpired()
		}
	}
}

// CleanupExpired removes files whose TTL has passed and returns how many
// were dropped from tracking
func (m *Manager) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed, errorCount := 0, 0

	for id, file := range m.files {
		if !now.After(file.ExpiresAt) {
			continue
		}
		if err := os.RemoveAll(filepath.Dir(file.FilePath)); err != nil && !errors.Is(err, os.ErrNotExist) {
			m.log.Error("Failed to remove file",
				zap.String("id", id),
				zap.String("path", file.FilePath),
				zap.Error(err))
			errorCount++
		}
		// Remove from tracking map regardless of deletion success
		delete(m.files, id)
		removed++
	}

	if removed > 0 || errorCount > 0 {
		m.log.Info("Storage cleanup completed",
			zap.Int("removed", removed),
			zap.Int("error_count", errorCount),
			zap.Int("remaining_tracked_files", len(m.files)))
	}
	return removed
}
