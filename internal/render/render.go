// Package render turns ranked word counts into chart artifacts. Each backend
// is a Renderer; callers pick one through a Registry by name.
package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ChartType is the kind of chart requested by the user.
type ChartType string

const (
	WordCloud ChartType = "wordcloud"
	Bar       ChartType = "bar"
	Pie       ChartType = "pie"
)

// ChartTypes lists every chart type in display order.
var ChartTypes = []ChartType{WordCloud, Bar, Pie}

var chartAliases = map[string]ChartType{
	"wordcloud":  WordCloud,
	"word-cloud": WordCloud,
	"cloud":      WordCloud,
	"词云图":        WordCloud,
	"bar":        Bar,
	"柱状图":        Bar,
	"pie":        Pie,
	"饼图":         Pie,
}

// ParseChartType accepts the canonical names plus a few aliases. Empty means WordCloud.
func ParseChartType(s string) (ChartType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return WordCloud, nil
	}
	if c, ok := chartAliases[s]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown chart type %q", s)
}

// Label is the human-readable name of the chart type.
func (c ChartType) Label() string {
	switch c {
	case WordCloud:
		return "Word cloud"
	case Bar:
		return "Bar chart"
	case Pie:
		return "Pie chart"
	}
	return string(c)
}

// Backend names a rendering library.
type Backend string

const (
	ECharts Backend = "echarts"
	PDF     Backend = "pdf"
	Text    Backend = "text"
)

// Support describes how a backend handles a chart type.
type Support int

const (
	Unsupported Support = iota
	Native
	// Approximate means the chart is drawn with a documented stand-in.
	Approximate
)

func (s Support) String() string {
	switch s {
	case Native:
		return "native"
	case Approximate:
		return "approximate"
	}
	return "unsupported"
}

var (
	// ErrNoData is returned when there is nothing to draw.
	ErrNoData = errors.New("render: no data")
	// ErrUnsupported is matched by every *UnsupportedError.
	ErrUnsupported = errors.New("render: unsupported chart type")
)

// UnsupportedError reports a chart type a backend cannot draw.
type UnsupportedError struct {
	Backend Backend
	Chart   ChartType
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("render: %s backend does not support %s", e.Backend, e.Chart.Label())
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// ChartData is the index-aligned input every renderer consumes.
type ChartData struct {
	Title  string
	Words  []string
	Counts []int
}

// Empty reports whether there is nothing to draw: no words, mismatched
// slices, or no positive count to scale against.
func (d ChartData) Empty() bool {
	return len(d.Words) == 0 || len(d.Words) != len(d.Counts) || d.max() <= 0
}

func (d ChartData) total() int {
	sum := 0
	for _, c := range d.Counts {
		sum += c
	}
	return sum
}

func (d ChartData) max() int {
	m := 0
	for _, c := range d.Counts {
		if c > m {
			m = c
		}
	}
	return m
}

// Artifact is a rendered chart.
type Artifact struct {
	ContentType string
	// Ext is the file extension including the dot.
	Ext  string
	Body []byte
	// Note explains approximations, empty for native charts.
	Note string
}

// Renderer draws a chart with one library.
type Renderer interface {
	Backend() Backend
	Supports(ChartType) Support
	Render(data ChartData, chart ChartType) (Artifact, error)
}

// check applies the guards shared by every backend.
func check(r Renderer, data ChartData, chart ChartType) error {
	if r.Supports(chart) == Unsupported {
		return &UnsupportedError{Backend: r.Backend(), Chart: chart}
	}
	if data.Empty() {
		return ErrNoData
	}
	return nil
}

// Options configures the default backends.
type Options struct {
	// PDFFontPath is a UTF-8 TrueType font used by the pdf backend. Without
	// it the core Helvetica font is used and non-Latin glyphs are lost.
	PDFFontPath string
	// Width and Height size the echarts canvas, CSS units.
	Width  string
	Height string
	// BarWidth is the column count of the longest text bar.
	BarWidth int
}

// Registry resolves backends by name.
type Registry struct {
	renderers map[Backend]Renderer
}

func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{renderers: make(map[Backend]Renderer, len(renderers))}
	for _, rr := range renderers {
		r.renderers[rr.Backend()] = rr
	}
	return r
}

// DefaultRegistry holds the echarts, pdf and text backends.
func DefaultRegistry(o Options) *Registry {
	return NewRegistry(
		NewECharts(o.Width, o.Height),
		NewPDF(o.PDFFontPath),
		NewText(o.BarWidth),
	)
}

// Get returns the renderer for name, matching case-insensitively.
func (r *Registry) Get(name string) (Renderer, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	if rr, ok := r.renderers[b]; ok {
		return rr, nil
	}
	return nil, fmt.Errorf("render: unknown backend %q (available: %s)", name, strings.Join(r.names(), ", "))
}

// Backends lists registered backends sorted by name.
func (r *Registry) Backends() []Backend {
	out := make([]Backend, 0, len(r.renderers))
	for b := range r.renderers {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) names() []string {
	bs := r.Backends()
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = string(b)
	}
	return out
}

// Render looks up backend and draws chart.
func (r *Registry) Render(backend string, data ChartData, chart ChartType) (Artifact, error) {
	rr, err := r.Get(backend)
	if err != nil {
		return Artifact{}, err
	}
	return rr.Render(data, chart)
}
