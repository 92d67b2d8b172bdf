// Package fallback hands videos the built-in downloader cannot fetch to an
// external legacy tool such as youtube-dl.
package fallback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/alessio/shellescape"
	"go.uber.org/zap"
)

// Recommend returns the command a user can run to fetch rawURL with tool
func Recommend(tool, rawURL string) string {
	return shellescape.QuoteCommand([]string{tool, rawURL})
}

// WrapperHint returns the hint attached to unsupported videos
func WrapperHint(tool, rawURL string) string {
	return fmt.Sprintf("try `%s` or rerun with -w", Recommend(tool, rawURL))
}

// Runner executes the external tool. It is used by the command line only.
type Runner struct {
	tool   string
	stdout io.Writer
	stderr io.Writer
	log    *zap.Logger
}

// NewRunner creates a Runner for tool writing the tool's output to stdout and stderr
func NewRunner(tool string, stdout, stderr io.Writer, log *zap.Logger) *Runner {
	return &Runner{tool: tool, stdout: stdout, stderr: stderr, log: log}
}

// Run invokes the tool once with all URLs
func (r *Runner) Run(ctx context.Context, urls []string) error {
	path, err := exec.LookPath(r.tool)
	if err != nil {
		return fmt.Errorf("fallback tool %q not found: %w", r.tool, err)
	}

	r.log.Info("Running fallback downloader",
		zap.String("command", shellescape.QuoteCommand(append([]string{r.tool}, urls...))),
	)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, urls...)
	cmd.Stdout = r.stdout
	cmd.Stderr = io.MultiWriter(r.stderr, &stderr)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w\nStderr: %s", r.tool, err, stderr.String())
	}
	return nil
}
