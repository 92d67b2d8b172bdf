package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"youdl/internal/model"
)

// ErrNoURLs is returned when neither positional URLs nor a URL file were given
var ErrNoURLs = errors.New("no video URLs given")

// ParseArgs parses the download command line on top of the environment configuration.
// Flag values override OUTPUT_DIR and STREAM_POLICY.
func ParseArgs(args []string, cfg *model.Config, output io.Writer) (*model.CLIArgs, error) {
	fs := flag.NewFlagSet("youdl", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: youdl [flags] URL...\n       youdl serve\n\nFlags:\n")
		fs.PrintDefaults()
	}

	parsed := &model.CLIArgs{}
	fs.StringVar(&parsed.OutputDir, "output-dir", cfg.Downloader.OutputDir, "directory downloaded files are written to")
	fs.StringVar(&parsed.OutputDir, "o", cfg.Downloader.OutputDir, "shorthand for --output-dir")
	fs.StringVar(&parsed.FromFilePath, "from-file", "", "read URLs from a file, one per line")
	fs.StringVar(&parsed.FromFilePath, "f", "", "shorthand for --from-file")
	fs.BoolVar(&parsed.UseWrapper, "wrapper", false, fmt.Sprintf("hand the URLs to %s instead of downloading them (try: youdl -w <failed_url>)", cfg.Fallback.Tool))
	fs.BoolVar(&parsed.UseWrapper, "w", false, "shorthand for --wrapper")
	fs.BoolVar(&parsed.AllStreams, "all-streams", cfg.Downloader.StreamPolicy.IncludesAdaptive(), "also offer audio-only and video-only streams")
	fs.BoolVar(&parsed.PickFirst, "first", false, "download the first offered stream without asking")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	parsed.URLs = append(parsed.URLs, fs.Args()...)
	if parsed.FromFilePath != "" {
		urls, err := ReadURLFile(parsed.FromFilePath)
		if err != nil {
			return nil, err
		}
		parsed.URLs = append(parsed.URLs, urls...)
	}
	if len(parsed.URLs) == 0 {
		return nil, ErrNoURLs
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name != "all-streams" {
			return
		}
		if parsed.AllStreams {
			cfg.Downloader.StreamPolicy = model.PolicyAll
		} else {
			cfg.Downloader.StreamPolicy = model.PolicyProgressive
		}
	})
	cfg.Downloader.OutputDir = parsed.OutputDir

	return parsed, nil
}

// ReadURLFile reads one URL per line, skipping blank lines and # comments
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL file: %w", err)
	}
	return urls, nil
}
