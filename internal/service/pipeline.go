package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"youdl/internal/fallback"
	"youdl/internal/model"
	"youdl/internal/selector"
	"youdl/pkg/progress"
	"youdl/pkg/validator"

	"go.uber.org/zap"
)

// Outcome is the result of running one URL through the pipeline
type Outcome struct {
	URL      string
	Title    string
	Path     string
	Stage    model.PipelineState // Completed or Failed
	FailedAt model.PipelineState // last state reached before the failure
	Err      error
}

// Resolution is a video whose download options are known
type Resolution struct {
	URL     string
	ID      model.VideoID
	Options model.DownloadOptions
}

// Title returns the video title
func (r *Resolution) Title() string {
	return r.Options.Title()
}

// Pipeline runs URLs through id extraction, metadata retrieval, option
// building, selection and download. Each URL fails on its own.
type Pipeline struct {
	fetcher      MetadataFetcher
	builder      *OptionsBuilder
	downloader   StreamDownloader
	fallbackTool string
	log          *zap.Logger
}

// NewPipeline creates a new pipeline
func NewPipeline(fetcher MetadataFetcher, builder *OptionsBuilder, downloader StreamDownloader, fallbackTool string, log *zap.Logger) *Pipeline {
	return &Pipeline{
		fetcher:      fetcher,
		builder:      builder,
		downloader:   downloader,
		fallbackTool: fallbackTool,
		log:          log,
	}
}

// Resolve extracts the video id, fetches metadata and builds the options.
// An unsupported video carries the fallback command as hint.
func (p *Pipeline) Resolve(ctx context.Context, rawURL string) (*Resolution, error) {
	res, _, err := p.resolve(ctx, rawURL)
	return res, err
}

func (p *Pipeline) resolve(ctx context.Context, rawURL string) (*Resolution, model.PipelineState, error) {
	log := p.log.With(zap.String("url", rawURL))
	state := model.StateURLGiven

	id, err := validator.ExtractVideoID(rawURL)
	if err != nil {
		return nil, state, err
	}
	state = p.advance(log, model.StateIDExtracted, zap.String("video_id", id.String()))

	pr, err := p.fetcher.Fetch(ctx, id)
	if err != nil {
		return nil, state, err
	}
	state = p.advance(log, model.StateMetadataFetched)

	opts, err := p.builder.Build(pr)
	if err != nil {
		var e *model.Error
		if errors.As(err, &e) && e.Kind == model.KindUnsupported && e.Hint == "" {
			e.Hint = fallback.WrapperHint(p.fallbackTool, rawURL)
		}
		return nil, state, err
	}
	state = p.advance(log, model.StateOptionsBuilt, zap.Int("options", len(opts)))

	return &Resolution{URL: rawURL, ID: id, Options: opts}, state, nil
}

// Fetch downloads a chosen option into dir
func (p *Pipeline) Fetch(ctx context.Context, opt model.DownloadOption, dir string, bar progress.Bar) (string, error) {
	p.log.Debug("Pipeline state",
		zap.String("state", model.StateDownloading.String()),
		zap.Int("itag", opt.Itag),
		zap.String("file", opt.FileName),
	)
	return p.downloader.Download(ctx, opt, dir, bar)
}

// Process runs one URL to completion, asking sel which option to download
func (p *Pipeline) Process(ctx context.Context, rawURL, dir string, sel selector.Selector, bar progress.Bar) Outcome {
	return p.process(ctx, rawURL, dir, sel, func(string) progress.Bar { return bar })
}

func (p *Pipeline) process(ctx context.Context, rawURL, dir string, sel selector.Selector, newBar progress.Factory) Outcome {
	out := Outcome{URL: rawURL}
	fail := func(state model.PipelineState, err error) Outcome {
		out.Stage, out.FailedAt, out.Err = model.StateFailed, state, err
		p.log.Error("Download pipeline failed",
			zap.String("url", rawURL),
			zap.String("failed_at", state.String()),
			zap.String("kind", string(model.KindOf(err))),
			zap.Error(err),
		)
		return out
	}

	res, state, err := p.resolve(ctx, rawURL)
	if err != nil {
		return fail(state, err)
	}
	out.Title = res.Title()

	opt, err := p.choose(res, sel)
	if err != nil {
		return fail(state, err)
	}
	p.log.Info(fmt.Sprintf("chosen itag %d for `%s`", opt.Itag, out.Title),
		zap.String("url", rawURL),
		zap.String("state", model.StateOptionSelected.String()),
	)

	bar := newBar(out.Title)
	path, err := p.Fetch(ctx, opt, dir, bar)
	if err != nil {
		bar.Abort()
		return fail(model.StateDownloading, err)
	}

	out.Path, out.Stage = path, model.StateCompleted
	p.advance(p.log.With(zap.String("url", rawURL)), model.StateCompleted, zap.String("path", path))
	return out
}

// choose asks the selector and takes the chosen option out of the list
func (p *Pipeline) choose(res *Resolution, sel selector.Selector) (model.DownloadOption, error) {
	n := len(res.Options)
	idx, err := sel.Choose(res.Title(), res.Options.Labels())
	if err != nil {
		return model.DownloadOption{}, model.Application(fmt.Errorf("selection failed: %w", err))
	}
	opt, ok := res.Options.Take(idx)
	if !ok {
		return model.DownloadOption{}, model.Application(fmt.Errorf("selected index %d is out of range [0, %d)", idx, n))
	}
	return opt, nil
}

// RunAll processes every URL concurrently, one goroutine per URL, and returns
// one outcome per URL in input order. A nil newBar reports no progress.
func (p *Pipeline) RunAll(ctx context.Context, urls []string, dir string, sel selector.Selector, newBar progress.Factory) []Outcome {
	if newBar == nil {
		newBar = progress.NopFactory
	}
	outcomes := make([]Outcome, len(urls))

	var wg sync.WaitGroup
	for i, rawURL := range urls {
		wg.Add(1)
		go func(i int, rawURL string) {
			defer wg.Done()
			outcomes[i] = p.process(ctx, rawURL, dir, sel, newBar)
		}(i, rawURL)
	}
	wg.Wait()

	return outcomes
}

func (p *Pipeline) advance(log *zap.Logger, state model.PipelineState, fields ...zap.Field) model.PipelineState {
	log.Debug("Pipeline state", append(fields, zap.String("state", state.String()))...)
	return state
}
