package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

const (
	colorGreen = "\x1b[32m"
	colorReset = "\x1b[0m"
)

// Console draws bars on a terminal. On a TTY with a single active transfer the
// line is redrawn in place; otherwise throttled status lines are appended.
type Console struct {
	mu        sync.Mutex
	out       io.Writer
	tty       bool
	active    int
	minPeriod time.Duration
}

// NewConsole creates a Console writing to f
func NewConsole(f *os.File) *Console {
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	period := 2 * time.Second
	if tty {
		period = 100 * time.Millisecond
	}
	return &Console{out: colorable.NewColorable(f), tty: tty, minPeriod: period}
}

// Printf writes a message line, keeping it off any in-place bar
func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tty && c.active == 1 {
		fmt.Fprint(c.out, "\r\x1b[K")
	}
	fmt.Fprintf(c.out, format, args...)
}

// NewBar implements Factory
func (c *Console) NewBar(name string) Bar {
	c.mu.Lock()
	c.active++
	c.mu.Unlock()
	return &consoleBar{console: c, name: name, total: UnknownLength}
}

type consoleBar struct {
	console  *Console
	name     string
	total    int64
	current  int64
	lastDraw time.Time
	finished bool
}

func (b *consoleBar) SetLength(total int64) {
	b.total = total
}

func (b *consoleBar) Add(n int64) {
	b.current += n
	if time.Since(b.lastDraw) < b.console.minPeriod {
		return
	}
	b.lastDraw = time.Now()
	b.console.draw(FormatStatus(b.name, b.current, b.total))
}

func (b *consoleBar) Finish(msg string) {
	if b.finished {
		return
	}
	b.finished = true

	c := b.console
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tty {
		if c.active == 1 {
			fmt.Fprint(c.out, "\r\x1b[K")
		}
		fmt.Fprintf(c.out, "%s%s%s\n", colorGreen, msg, colorReset)
	} else {
		fmt.Fprintln(c.out, msg)
	}
	c.active--
}

// Abort releases the bar without a message, clearing its line on a TTY
func (b *consoleBar) Abort() {
	if b.finished {
		return
	}
	b.finished = true

	c := b.console
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tty && c.active == 1 {
		fmt.Fprint(c.out, "\r\x1b[K")
	}
	c.active--
}

func (c *Console) draw(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tty && c.active == 1 {
		fmt.Fprintf(c.out, "\r\x1b[K%s", line)
		return
	}
	fmt.Fprintln(c.out, line)
}
