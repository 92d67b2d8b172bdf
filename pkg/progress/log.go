package progress

import (
	"time"

	"go.uber.org/zap"
)

// LogBar reports progress through a zap logger, at most once per period
type LogBar struct {
	log       *zap.Logger
	minPeriod time.Duration
	total     int64
	current   int64
	lastLog   time.Time
	started   time.Time
}

// NewLogBar creates a LogBar named after the transfer
func NewLogBar(log *zap.Logger, name string, minPeriod time.Duration) *LogBar {
	return &LogBar{
		log:       log.With(zap.String("transfer", name)),
		minPeriod: minPeriod,
		total:     UnknownLength,
		started:   time.Now(),
		lastLog:   time.Now(),
	}
}

func (b *LogBar) SetLength(total int64) {
	b.total = total
}

func (b *LogBar) Add(n int64) {
	b.current += n
	if time.Since(b.lastLog) < b.minPeriod {
		return
	}
	b.lastLog = time.Now()
	b.log.Debug("Download progress",
		zap.Int64("bytes", b.current),
		zap.Float64("percent", Percent(b.current, b.total)),
	)
}

func (b *LogBar) Finish(msg string) {
	b.log.Info(msg,
		zap.Int64("bytes", b.current),
		zap.Duration("elapsed", time.Since(b.started)),
	)
}

func (b *LogBar) Abort() {
	b.log.Warn("Download aborted",
		zap.Int64("bytes", b.current),
		zap.Duration("elapsed", time.Since(b.started)),
	)
}

// Current returns the number of bytes reported so far
func (b *LogBar) Current() int64 {
	return b.current
}
