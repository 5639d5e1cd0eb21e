// Package pipeline wires fetching, cleaning, segmentation and ranking into
// one synchronous analysis of a single URL.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/wordfreq/internal/extract"
	"github.com/hyperifyio/wordfreq/internal/fetch"
	"github.com/hyperifyio/wordfreq/internal/normalize"
	"github.com/hyperifyio/wordfreq/internal/rank"
	"github.com/hyperifyio/wordfreq/internal/render"
	"github.com/hyperifyio/wordfreq/internal/segment"
)

// Getter is the subset of fetch.Client the pipeline needs.
type Getter interface {
	Get(ctx context.Context, url string) (fetch.Response, error)
}

// Result is the outcome of FetchText. Text is empty whenever Err is set.
type Result struct {
	URL   string
	Title string
	Text  string
	Err   *fetch.Error
}

// OK reports whether the fetch produced content.
func (r Result) OK() bool { return r.Err == nil }

// RenderConfig carries the user's selections into a single analysis.
type RenderConfig struct {
	ChartType render.ChartType
	Backend   render.Backend
	TopN      int
	MinCount  int
}

// Analysis is everything one submission produces.
type Analysis struct {
	Fetch    Result
	Ranked   []rank.Entry
	Filtered []rank.Entry
	Config   RenderConfig
	Elapsed  time.Duration
}

// Analyzer holds the long-lived collaborators. It keeps no per-request state.
type Analyzer struct {
	Getter    Getter
	Extractor extract.Extractor
	Tokenizer segment.Tokenizer
	// Observe, when set, is told the outcome of every fetch.
	Observe func(r Result, elapsed time.Duration)
}

// FetchText retrieves url and reduces it to normalized text. Failures are
// logged and reported in Result.Err; they never surface as a returned error.
func (a *Analyzer) FetchText(ctx context.Context, url string) Result {
	start := time.Now()
	res := a.fetchText(ctx, url)
	if a.Observe != nil {
		a.Observe(res, time.Since(start))
	}
	return res
}

func (a *Analyzer) fetchText(ctx context.Context, url string) Result {
	resp, err := a.Getter.Get(ctx, url)
	if err != nil {
		fe := asFetchError(url, err)
		log.Warn().Err(fe).Str("url", url).Str("kind", fe.Kind.String()).Msg("fetch failed")
		return Result{URL: url, Err: fe}
	}
	ex := a.Extractor
	if ex == nil {
		ex = extract.TextExtractor{}
	}
	doc, err := ex.Extract(resp.Body, resp.URL)
	if err != nil {
		fe := &fetch.Error{URL: url, Kind: fetch.KindBody, StatusCode: resp.StatusCode, Cause: err}
		log.Warn().Err(fe).Str("url", url).Msg("extract failed")
		return Result{URL: url, Err: fe}
	}
	text := normalize.Clean(doc.Text)
	log.Debug().Str("url", url).Str("content_type", resp.ContentType).Int("chars", len([]rune(text))).Msg("fetched text")
	return Result{URL: url, Title: doc.Title, Text: text}
}

func asFetchError(url string, err error) *fetch.Error {
	var fe *fetch.Error
	if errors.As(err, &fe) {
		return fe
	}
	return &fetch.Error{URL: url, Kind: fetch.KindNetwork, Cause: err}
}

// Rank segments text and returns the topN most frequent words.
func (a *Analyzer) Rank(text string, topN int) []rank.Entry {
	return rank.Rank(segment.Words(a.Tokenizer, text), topN)
}

// Analyze runs the full pipeline. Truncation to TopN happens before the
// MinCount filter, so a word outside the top N never reappears.
func (a *Analyzer) Analyze(ctx context.Context, url string, cfg RenderConfig) Analysis {
	start := time.Now()
	res := a.FetchText(ctx, url)
	ranked := a.Rank(res.Text, cfg.TopN)
	minCount := cfg.MinCount
	if minCount < 1 {
		minCount = 1
	}
	return Analysis{
		Fetch:    res,
		Ranked:   ranked,
		Filtered: rank.FilterByMinCount(ranked, minCount),
		Config:   cfg,
		Elapsed:  time.Since(start),
	}
}

// Unzip splits entries into index-aligned words and counts. ok is false
// when there is nothing to draw.
func Unzip(entries []rank.Entry) (words []string, counts []int, ok bool) {
	if len(entries) == 0 {
		return []string{}, []int{}, false
	}
	words = make([]string, len(entries))
	counts = make([]int, len(entries))
	for i, e := range entries {
		words[i] = e.Word
		counts[i] = e.Count
	}
	return words, counts, true
}

// ChartData converts the filtered list into renderer input.
func (an Analysis) ChartData() (render.ChartData, bool) {
	words, counts, ok := Unzip(an.Filtered)
	title := "Word Frequency"
	if an.Fetch.Title != "" {
		title = an.Fetch.Title
	}
	return render.ChartData{Title: title, Words: words, Counts: counts}, ok
}

// Render draws the analysis with the configured backend. It returns
// render.ErrNoData without calling the backend when nothing survived the filter.
func (an Analysis) Render(reg *render.Registry) (render.Artifact, error) {
	data, ok := an.ChartData()
	if !ok {
		return render.Artifact{}, render.ErrNoData
	}
	return reg.Render(string(an.Config.Backend), data, an.Config.ChartType)
}

// Close releases tokenizer resources when the tokenizer holds any.
func (a *Analyzer) Close() error {
	if c, ok := a.Tokenizer.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
