package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hyperifyio/wordfreq/internal/extract"
	"github.com/hyperifyio/wordfreq/internal/fetch"
	"github.com/hyperifyio/wordfreq/internal/rank"
	"github.com/hyperifyio/wordfreq/internal/render"
	"github.com/hyperifyio/wordfreq/internal/segment"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Analyze command
	URL        string
	OutputPath string
	PrintText  bool

	// Fetch
	FetchTimeout time.Duration `validate:"gte=0"`
	UserAgent    string
	MaxAttempts  int   `validate:"gte=0,lte=10"`
	MaxRedirects int   `validate:"gte=0,lte=20"`
	MaxBodyBytes int64 `validate:"gte=0"`
	// RespectRobots adds a robots.txt check before the page GET.
	RespectRobots bool

	// Text processing
	ExtractMode    string `validate:"oneof=text heuristic readability"`
	SegmentBackend string `validate:"oneof=jieba sego"`
	SegmentDict    string `validate:"required_if=SegmentBackend sego"`

	// Chart
	ChartType   string `validate:"oneof=wordcloud bar pie"`
	Backend     string `validate:"oneof=echarts pdf text"`
	TopN        int    `validate:"gte=1"`
	MinCount    int    `validate:"gte=1,lte=10"`
	PDFFontPath string

	// Server
	Addr string `validate:"required"`

	Verbose bool
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		FetchTimeout:   fetch.DefaultTimeout,
		UserAgent:      fetch.DefaultUserAgent,
		MaxAttempts:    1,
		MaxRedirects:   5,
		MaxBodyBytes:   fetch.DefaultMaxBodyBytes,
		ExtractMode:    string(extract.ModeText),
		SegmentBackend: string(segment.Jieba),
		ChartType:      string(render.WordCloud),
		Backend:        string(render.ECharts),
		TopN:           rank.DefaultTopN,
		MinCount:       1,
		Addr:           ":8080",
	}
}

var validate = validator.New()

// ValidateConfig canonicalizes enum-like fields (so aliases such as "词云图"
// become "wordcloud") and then checks the struct rules.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}
	chart, err := render.ParseChartType(cfg.ChartType)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg.ChartType = string(chart)
	mode, err := extract.ParseMode(cfg.ExtractMode)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg.ExtractMode = string(mode)
	seg, err := segment.ParseBackend(cfg.SegmentBackend)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg.SegmentBackend = string(seg)
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s failed %q (value %v): %w", fe.Field(), fe.Tag(), fe.Value(), err)
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
