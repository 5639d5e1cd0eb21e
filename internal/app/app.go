package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/wordfreq/internal/extract"
	"github.com/hyperifyio/wordfreq/internal/fetch"
	"github.com/hyperifyio/wordfreq/internal/pipeline"
	"github.com/hyperifyio/wordfreq/internal/rank"
	"github.com/hyperifyio/wordfreq/internal/render"
	"github.com/hyperifyio/wordfreq/internal/robots"
	"github.com/hyperifyio/wordfreq/internal/segment"
)

// App owns the long-lived components built from a Config.
type App struct {
	cfg       Config
	analyzer  *pipeline.Analyzer
	renderers *render.Registry
}

// New validates cfg and builds the fetcher, extractor, tokenizer and
// renderer registry. Close must be called to free tokenizer resources.
func New(cfg Config) (*App, error) {
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	tok, err := segment.New(segment.Backend(cfg.SegmentBackend), cfg.SegmentDict)
	if err != nil {
		return nil, fmt.Errorf("segmenter: %w", err)
	}
	client := &fetch.Client{
		HTTPClient:        newHTTPClient(),
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       cfg.MaxAttempts,
		PerRequestTimeout: cfg.FetchTimeout,
		RedirectMaxHops:   cfg.MaxRedirects,
		MaxBodyBytes:      cfg.MaxBodyBytes,
	}
	if cfg.RespectRobots {
		client.Robots = &robots.Checker{HTTPClient: client.HTTPClient}
	}
	a := &App{
		cfg: cfg,
		analyzer: &pipeline.Analyzer{
			Getter:    client,
			Extractor: extract.New(extract.Mode(cfg.ExtractMode)),
			Tokenizer: tok,
		},
		renderers: render.DefaultRegistry(render.Options{PDFFontPath: cfg.PDFFontPath}),
	}
	log.Debug().
		Str("extract", cfg.ExtractMode).
		Str("segment", cfg.SegmentBackend).
		Str("chart", cfg.ChartType).
		Str("backend", cfg.Backend).
		Msg("app ready")
	return a, nil
}

func (a *App) Close() {
	if err := a.analyzer.Close(); err != nil {
		log.Warn().Err(err).Msg("close analyzer")
	}
}

func (a *App) Config() Config { return a.cfg }

func (a *App) Analyzer() *pipeline.Analyzer { return a.analyzer }

func (a *App) Renderers() *render.Registry { return a.renderers }

// RenderConfig returns the configured chart selections.
func (a *App) RenderConfig() pipeline.RenderConfig {
	return pipeline.RenderConfig{
		ChartType: render.ChartType(a.cfg.ChartType),
		Backend:   render.Backend(a.cfg.Backend),
		TopN:      a.cfg.TopN,
		MinCount:  a.cfg.MinCount,
	}
}

// CheckSupport fails when the configured backend cannot draw the
// configured chart type at all.
func (a *App) CheckSupport() error {
	rc := a.RenderConfig()
	r, err := a.renderers.Get(string(rc.Backend))
	if err != nil {
		return err
	}
	if r.Supports(rc.ChartType) == render.Unsupported {
		return &render.UnsupportedError{Backend: rc.Backend, Chart: rc.ChartType}
	}
	return nil
}

// Run analyzes cfg.URL, prints the ranked table to stdout and writes the
// chart. A failed fetch or an empty result is reported on stderr and is
// not an error.
func (a *App) Run(ctx context.Context, stdout, stderr io.Writer) error {
	if strings.TrimSpace(a.cfg.URL) == "" {
		return errors.New("missing URL")
	}
	if err := a.CheckSupport(); err != nil {
		return err
	}
	an := a.analyzer.Analyze(ctx, a.cfg.URL, a.RenderConfig())
	if !an.Fetch.OK() {
		fmt.Fprintf(stderr, "fetch failed: %v\n", an.Fetch.Err)
	}
	if a.cfg.PrintText && an.Fetch.Text != "" {
		fmt.Fprintln(stdout, an.Fetch.Text)
		fmt.Fprintln(stdout)
	}
	if err := WriteTable(stdout, an.Filtered); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	art, err := an.Render(a.renderers)
	if errors.Is(err, render.ErrNoData) {
		fmt.Fprintln(stderr, "no data: nothing to chart")
		return nil
	}
	if err != nil {
		return err
	}
	if art.Note != "" {
		fmt.Fprintf(stderr, "note: %s\n", art.Note)
	}
	return a.writeArtifact(stdout, art, an.Config)
}

func (a *App) writeArtifact(stdout io.Writer, art render.Artifact, rc pipeline.RenderConfig) error {
	path := a.cfg.OutputPath
	if path == "-" || (path == "" && rc.Backend == render.Text) {
		fmt.Fprintln(stdout)
		_, err := stdout.Write(art.Body)
		return err
	}
	if path == "" {
		path = "wordfreq-" + string(rc.ChartType) + art.Ext
	}
	if err := os.WriteFile(path, art.Body, 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	log.Info().Str("path", path).Str("content_type", art.ContentType).Int("bytes", len(art.Body)).Msg("wrote chart")
	return nil
}

// WriteTable prints entries as an aligned rank/word/count table.
func WriteTable(w io.Writer, entries []rank.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tWORD\tCOUNT")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, e.Word, e.Count)
	}
	return tw.Flush()
}
