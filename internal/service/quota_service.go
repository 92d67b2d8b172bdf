package service

import (
	"sync"
	"time"

	"youdl/internal/model"

	"go.uber.org/zap"
)

const bytesPerMB = 1024 * 1024

// QuotaEntry tracks quota usage per IP
type QuotaEntry struct {
	IP        string
	UsedMB    int64
	ResetTime time.Time
}

// QuotaInfo is the quota state reported to clients
type QuotaInfo struct {
	Enabled     bool      `json:"enabled"`
	UsedMB      int64     `json:"used_mb"`
	LimitMB     int64     `json:"limit_mb"`
	RemainingMB int64     `json:"remaining_mb"`
	ResetTime   time.Time `json:"reset_time"`
}

// QuotaService manages per-IP daily download quotas. Entries reset lazily
// once their reset time has passed.
type QuotaService struct {
	cfg    *model.QuotaConfig
	quotas map[string]*QuotaEntry
	mu     sync.Mutex
	now    func() time.Time
	log    *zap.Logger
}

// NewQuotaService creates a new quota service
func NewQuotaService(cfg *model.QuotaConfig, log *zap.Logger) *QuotaService {
	return &QuotaService{
		cfg:    cfg,
		quotas: make(map[string]*QuotaEntry),
		now:    time.Now,
		log:    log,
	}
}

// Enabled reports whether quotas are enforced
func (qs *QuotaService) Enabled() bool {
	return qs.cfg.Enabled
}

// CheckQuota checks if IP has quota left for requestedMB and returns the remaining MB
func (qs *QuotaService) CheckQuota(ip string, requestedMB int64) (bool, int64) {
	if !qs.cfg.Enabled {
		return true, qs.cfg.DailyLimitMB
	}

	qs.mu.Lock()
	defer qs.mu.Unlock()

	entry := qs.entry(ip)
	remaining := qs.cfg.DailyLimitMB - entry.UsedMB
	if remaining <= 0 {
		qs.log.Warn("Quota exhausted", zap.String("ip", ip), zap.Int64("limit_mb", qs.cfg.DailyLimitMB))
		return false, 0
	}
	if requestedMB > remaining {
		qs.log.Warn("Quota insufficient", zap.String("ip", ip), zap.Int64("requested_mb", requestedMB), zap.Int64("remaining_mb", remaining))
		return false, remaining
	}
	return true, remaining
}

// AddUsage charges sizeBytes to the IP, rounded up to whole MB
func (qs *QuotaService) AddUsage(ip string, sizeBytes int64) {
	if !qs.cfg.Enabled {
		return
	}

	qs.mu.Lock()
	defer qs.mu.Unlock()

	entry := qs.entry(ip)
	entry.UsedMB += BytesToMB(sizeBytes)
	qs.log.Debug("Quota usage updated", zap.String("ip", ip), zap.Int64("used_mb", entry.UsedMB), zap.Int64("limit_mb", qs.cfg.DailyLimitMB))
}

// GetQuotaInfo returns current quota info for IP
func (qs *QuotaService) GetQuotaInfo(ip string) QuotaInfo {
	if !qs.cfg.Enabled {
		return QuotaInfo{Enabled: false}
	}

	qs.mu.Lock()
	defer qs.mu.Unlock()

	entry := qs.entry(ip)
	return QuotaInfo{
		Enabled:     true,
		UsedMB:      entry.UsedMB,
		LimitMB:     qs.cfg.DailyLimitMB,
		RemainingMB: max(qs.cfg.DailyLimitMB-entry.UsedMB, 0),
		ResetTime:   entry.ResetTime,
	}
}

// entry returns the IP's entry, creating or resetting it. Callers hold mu.
func (qs *QuotaService) entry(ip string) *QuotaEntry {
	now := qs.now()
	entry, ok := qs.quotas[ip]
	if !ok {
		entry = &QuotaEntry{IP: ip, ResetTime: qs.nextReset(now)}
		qs.quotas[ip] = entry
		return entry
	}
	if now.After(entry.ResetTime) {
		entry.UsedMB = 0
		entry.ResetTime = qs.nextReset(now)
		qs.log.Info("Quota reset for IP", zap.String("ip", ip), zap.Time("new_reset_time", entry.ResetTime))
	}
	return entry
}

// nextReset calculates next reset time based on config
func (qs *QuotaService) nextReset(now time.Time) time.Time {
	reset := time.Date(now.Year(), now.Month(), now.Day(), qs.cfg.ResetHour, qs.cfg.ResetMinute, 0, 0, now.Location())
	if !reset.After(now) {
		reset = reset.AddDate(0, 0, 1)
	}
	return reset
}

// BytesToMB converts a byte count to MB, rounding up
func BytesToMB(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return (n + bytesPerMB - 1) / bytesPerMB
}
