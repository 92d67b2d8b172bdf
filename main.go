package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"youdl/config"
	"youdl/internal/fallback"
	"youdl/internal/model"
	"youdl/internal/selector"
	"youdl/internal/service"
	"youdl/pkg/logger"
	"youdl/pkg/progress"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.Load()

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	if len(args) > 0 && args[0] == "serve" {
		if err := serve(cfg, log); err != nil {
			log.Error("Server failed", zap.Error(err))
			return 1
		}
		return 0
	}

	cliArgs, err := config.ParseArgs(args, cfg, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "youdl: %v\n", err)
		return 2
	}

	ctx := context.Background()

	if cliArgs.UseWrapper {
		runner := fallback.NewRunner(cfg.Fallback.Tool, os.Stdout, os.Stderr, log)
		if err := runner.Run(ctx, cliArgs.URLs); err != nil {
			log.Error("Fallback downloader failed", zap.Error(err))
			return 1
		}
		return 0
	}

	console := progress.NewConsole(os.Stderr)
	var sel selector.Selector = selector.NewPrompt(os.Stdin, os.Stdout)
	if cliArgs.PickFirst {
		sel = selector.First()
	}

	outcomes := newPipeline(cfg, log).RunAll(ctx, cliArgs.URLs, cfg.Downloader.OutputDir, sel, console.NewBar)

	failed := 0
	for _, out := range outcomes {
		if out.Err == nil {
			continue
		}
		failed++
		console.Printf("failed to download %s: %v\n", out.URL, out.Err)
	}
	if failed > 0 {
		log.Warn("Some downloads failed", zap.Int("failed", failed), zap.Int("total", len(outcomes)))
		return 1
	}
	return 0
}

// newPipeline builds the download pipeline from configuration
func newPipeline(cfg *model.Config, log *zap.Logger) *service.Pipeline {
	client := service.NewHTTPClient(&cfg.Downloader)
	return service.NewPipeline(
		service.NewMetadataService(&cfg.Downloader, client, log),
		service.NewOptionsBuilder(cfg.Downloader.StreamPolicy, log),
		service.NewDownloadService(&cfg.Downloader, client, log),
		cfg.Fallback.Tool,
		log,
	)
}
