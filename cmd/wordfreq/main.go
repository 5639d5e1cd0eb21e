package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/wordfreq/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	envFiles   []string
	verbose    bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	ro := &rootOptions{}
	root := &cobra.Command{
		Use:           "wordfreq",
		Short:         "Word frequency charts for a web page",
		Long:          "wordfreq fetches a page, strips it to plain text, segments it into words and charts the most frequent ones.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	addRootFlags(root, ro)
	root.AddCommand(newAnalyzeCmd(ro), newServeCmd(ro), newVersionCmd())
	return root
}

func addRootFlags(cmd *cobra.Command, ro *rootOptions) {
	cmd.PersistentFlags().StringVar(&ro.configPath, "config", "", "Path to a YAML or JSON config file")
	cmd.PersistentFlags().StringSliceVar(&ro.envFiles, "env-file", []string{".env"}, "Dotenv files to load; later files override earlier ones")
	cmd.PersistentFlags().BoolVarP(&ro.verbose, "verbose", "v", false, "Verbose logging")
}

// pipelineFlags are shared by analyze and serve. Only flags the user
// actually set override lower layers.
type pipelineFlags struct {
	chart       string
	backend     string
	top         int
	minCount    int
	extract     string
	segmenter   string
	dict        string
	pdfFont     string
	userAgent   string
	timeout     time.Duration
	maxAttempts int
	robots      bool
}

func addPipelineFlags(cmd *cobra.Command) *pipelineFlags {
	d := app.Defaults()
	pf := &pipelineFlags{}
	f := cmd.Flags()
	f.StringVar(&pf.chart, "chart", d.ChartType, "Chart type: wordcloud, bar or pie")
	f.StringVar(&pf.backend, "backend", d.Backend, "Rendering backend: echarts, pdf or text")
	f.IntVar(&pf.top, "top", d.TopN, "Number of most frequent words to keep")
	f.IntVar(&pf.minCount, "min-count", d.MinCount, "Drop words counted fewer times than this (1-10)")
	f.StringVar(&pf.extract, "extract", d.ExtractMode, "Text extraction: text, heuristic or readability")
	f.StringVar(&pf.segmenter, "segmenter", d.SegmentBackend, "Word segmenter: jieba or sego")
	f.StringVar(&pf.dict, "dict", "", "Dictionary file for the segmenter (required for sego)")
	f.StringVar(&pf.pdfFont, "pdf-font", "", "UTF-8 TrueType font for the pdf backend")
	f.StringVar(&pf.userAgent, "user-agent", d.UserAgent, "User-Agent header sent when fetching")
	f.DurationVar(&pf.timeout, "timeout", d.FetchTimeout, "Per-request fetch timeout")
	f.IntVar(&pf.maxAttempts, "max-attempts", d.MaxAttempts, "Fetch attempts including the first; retries only transient errors")
	f.BoolVar(&pf.robots, "respect-robots", false, "Skip pages that robots.txt disallows")
	return pf
}

// loadConfig layers defaults, config file, env and explicit flags, in that order.
func loadConfig(cmd *cobra.Command, ro *rootOptions, pf *pipelineFlags) (app.Config, error) {
	cfg := app.Defaults()
	if err := app.LoadEnvFiles(ro.envFiles...); err != nil {
		return cfg, err
	}
	if ro.configPath != "" {
		fc, err := app.LoadConfigFile(ro.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", ro.configPath, err)
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			return cfg, fmt.Errorf("config %s: %w", ro.configPath, err)
		}
	}
	if err := app.ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("chart") {
		cfg.ChartType = pf.chart
	}
	if f.Changed("backend") {
		cfg.Backend = pf.backend
	}
	if f.Changed("top") {
		cfg.TopN = pf.top
	}
	if f.Changed("min-count") {
		cfg.MinCount = pf.minCount
	}
	if f.Changed("extract") {
		cfg.ExtractMode = pf.extract
	}
	if f.Changed("segmenter") {
		cfg.SegmentBackend = pf.segmenter
	}
	if f.Changed("dict") {
		cfg.SegmentDict = pf.dict
	}
	if f.Changed("pdf-font") {
		cfg.PDFFontPath = pf.pdfFont
	}
	if f.Changed("user-agent") {
		cfg.UserAgent = pf.userAgent
	}
	if f.Changed("timeout") {
		cfg.FetchTimeout = pf.timeout
	}
	if f.Changed("max-attempts") {
		cfg.MaxAttempts = pf.maxAttempts
	}
	if f.Changed("respect-robots") {
		cfg.RespectRobots = pf.robots
	}
	if ro.verbose {
		cfg.Verbose = true
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return cfg, nil
}
