// Package selector decides which download option of a video is fetched.
package selector

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// ErrNoChoices is returned when there is nothing to choose from
var ErrNoChoices = errors.New("no options to choose from")

// Selector picks one of the labels offered for a video and returns its index
type Selector interface {
	Choose(title string, labels []string) (int, error)
}

// Func adapts a function to a Selector
type Func func(title string, labels []string) (int, error)

func (f Func) Choose(title string, labels []string) (int, error) {
	return f(title, labels)
}

// First always picks the first option
func First() Selector {
	return Index(0)
}

// Index always picks the option at i
func Index(i int) Selector {
	return Func(func(_ string, labels []string) (int, error) {
		if len(labels) == 0 {
			return 0, ErrNoChoices
		}
		return i, nil
	})
}

// Prompt asks the user on a terminal. Concurrent prompts are serialised so
// that only one question is on screen at a time.
type Prompt struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt creates a Prompt reading answers from in and writing questions to out
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Choose prints the numbered labels and reads an index. An empty answer picks
// 0; an invalid answer asks again.
func (p *Prompt) Choose(title string, labels []string) (int, error) {
	if len(labels) == 0 {
		return 0, ErrNoChoices
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "choose the file format for `%s`:\n", title)
	for i, label := range labels {
		fmt.Fprintf(p.out, "  [%d] %s\n", i, label)
	}

	for {
		fmt.Fprintf(p.out, "index [0]: ")
		line, err := p.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("failed to read selection: %w", err)
		}
		closed := err != nil
		answer := strings.TrimSpace(line)

		switch idx, convErr := strconv.Atoi(answer); {
		case answer == "" && closed:
			return 0, fmt.Errorf("no selection for %q: input closed", title)
		case answer == "":
			return 0, nil
		case convErr == nil && idx >= 0 && idx < len(labels):
			return idx, nil
		}

		fmt.Fprintf(p.out, "please enter a number between 0 and %d\n", len(labels)-1)
		if closed {
			return 0, fmt.Errorf("no valid selection for %q: input closed", title)
		}
	}
}
