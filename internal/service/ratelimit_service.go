package service

import (
	"sync"
	"time"

	"youdl/internal/model"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitService limits inbound API requests per client IP with a token bucket
type RateLimitService struct {
	cfg      *model.RateLimitConfig
	visitors map[string]*visitor
	mu       sync.Mutex
	quitChan chan struct{}
	stopOnce sync.Once
	log      *zap.Logger
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(cfg *model.RateLimitConfig, log *zap.Logger) *RateLimitService {
	service := &RateLimitService{
		cfg:      cfg,
		visitors: make(map[string]*visitor),
		quitChan: make(chan struct{}),
		log:      log,
	}

	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go service.cleanupRoutine()
	}

	return service
}

// Allow reports whether a request from ip may proceed
func (rls *RateLimitService) Allow(ip string) bool {
	if !rls.cfg.Enabled {
		return true
	}
	if rls.limiter(ip).Allow() {
		return true
	}
	rls.log.Warn("Rate limit exceeded", zap.String("ip", ip), zap.Int("limit_per_minute", rls.cfg.RequestsPerMinute))
	return false
}

// Remaining returns the whole tokens left for ip, or -1 when unlimited
func (rls *RateLimitService) Remaining(ip string) int {
	if !rls.cfg.Enabled {
		return -1
	}
	return max(int(rls.limiter(ip).Tokens()), 0)
}

func (rls *RateLimitService) limiter(ip string) *rate.Limiter {
	rls.mu.Lock()
	defer rls.mu.Unlock()

	v, ok := rls.visitors[ip]
	if !ok {
		burst := rls.cfg.BurstSize
		if burst <= 0 {
			burst = 1
		}
		perSecond := rate.Limit(float64(rls.cfg.RequestsPerMinute) / 60)
		v = &visitor{limiter: rate.NewLimiter(perSecond, burst)}
		rls.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupRoutine periodically forgets idle clients
func (rls *RateLimitService) cleanupRoutine() {
	interval := time.Duration(rls.cfg.CleanupInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rls.quitChan:
			return
		case <-ticker.C:
			rls.cleanup(interval)
		}
	}
}

func (rls *RateLimitService) cleanup(idle time.Duration) {
	rls.mu.Lock()
	defer rls.mu.Unlock()

	removed := 0
	for ip, v := range rls.visitors {
		if time.Since(v.lastSeen) > idle {
			delete(rls.visitors, ip)
			removed++
		}
	}
	if removed > 0 {
		rls.log.Debug("Rate limit entries cleaned up", zap.Int("removed", removed), zap.Int("remaining", len(rls.visitors)))
	}
}

// Stop stops the cleanup routine
func (rls *RateLimitService) Stop() {
	rls.stopOnce.Do(func() { close(rls.quitChan) })
}
