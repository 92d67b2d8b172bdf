// Package progress reports byte-level download progress.
package progress

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// UnknownLength is passed to SetLength when the server did not announce a size
const UnknownLength int64 = math.MaxInt64

const (
	barFilled = "█"
	barEmpty  = "░"
	barLength = 20
)

// Bar receives progress of a single transfer. A Bar is used by one goroutine
// and ends with exactly one of Finish or Abort.
type Bar interface {
	SetLength(total int64)
	Add(n int64)
	Finish(msg string)
	Abort()
}

// Factory creates a bar for the named transfer
type Factory func(name string) Bar

// Nop discards all progress
type Nop struct{}

func (Nop) SetLength(int64) {}
func (Nop) Add(int64)       {}
func (Nop) Finish(string)   {}
func (Nop) Abort()          {}

// NopFactory returns Nop bars
func NopFactory(string) Bar { return Nop{} }

// Percent returns current/total as a percentage in [0,100], or -1 when total is unknown
func Percent(current, total int64) float64 {
	if total <= 0 || total == UnknownLength {
		return -1
	}
	p := float64(current) / float64(total) * 100
	return math.Max(0, math.Min(100, p))
}

// FormatBar renders a fixed-width bar followed by the percentage
func FormatBar(percent float64) string {
	percent = math.Max(0, math.Min(100, percent))
	filled := int(percent / 100 * barLength)
	return fmt.Sprintf("%s%s %5.1f%%",
		strings.Repeat(barFilled, filled),
		strings.Repeat(barEmpty, barLength-filled),
		percent,
	)
}

// FormatStatus renders a status line for a transfer
func FormatStatus(name string, current, total int64) string {
	if p := Percent(current, total); p >= 0 {
		return fmt.Sprintf("%s %s %s / %s", name, FormatBar(p),
			humanize.IBytes(uint64(current)), humanize.IBytes(uint64(total)))
	}
	return fmt.Sprintf("%s %s downloaded", name, humanize.IBytes(uint64(current)))
}
