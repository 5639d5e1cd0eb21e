package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by ApplyEnvOverrides.
const (
	EnvFetchTimeout   = "WORDFREQ_FETCH_TIMEOUT"
	EnvUserAgent      = "WORDFREQ_USER_AGENT"
	EnvMaxAttempts    = "WORDFREQ_MAX_ATTEMPTS"
	EnvMaxRedirects   = "WORDFREQ_MAX_REDIRECTS"
	EnvMaxBodyBytes   = "WORDFREQ_MAX_BODY_BYTES"
	EnvRespectRobots  = "WORDFREQ_RESPECT_ROBOTS"
	EnvExtractMode    = "WORDFREQ_EXTRACT_MODE"
	EnvSegmentBackend = "WORDFREQ_SEGMENT_BACKEND"
	EnvSegmentDict    = "WORDFREQ_SEGMENT_DICT"
	EnvChart          = "WORDFREQ_CHART"
	EnvBackend        = "WORDFREQ_BACKEND"
	EnvTopN           = "WORDFREQ_TOP_N"
	EnvMinCount       = "WORDFREQ_MIN_COUNT"
	EnvPDFFont        = "WORDFREQ_PDF_FONT"
	EnvAddr           = "WORDFREQ_ADDR"
	EnvVerbose        = "WORDFREQ_VERBOSE"
)

// ApplyEnvOverrides lets env take precedence over values coming from a
// config file while flags applied afterwards stay highest. Malformed
// numbers and durations are reported instead of silently ignored.
func ApplyEnvOverrides(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	setString(&cfg.UserAgent, EnvUserAgent)
	setString(&cfg.ExtractMode, EnvExtractMode)
	setString(&cfg.SegmentBackend, EnvSegmentBackend)
	setString(&cfg.SegmentDict, EnvSegmentDict)
	setString(&cfg.ChartType, EnvChart)
	setString(&cfg.Backend, EnvBackend)
	setString(&cfg.PDFFontPath, EnvPDFFont)
	setString(&cfg.Addr, EnvAddr)

	if s := env(EnvFetchTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFetchTimeout, err)
		}
		cfg.FetchTimeout = d
	}
	for _, v := range []struct {
		key string
		dst *int
	}{
		{EnvMaxAttempts, &cfg.MaxAttempts},
		{EnvMaxRedirects, &cfg.MaxRedirects},
		{EnvTopN, &cfg.TopN},
		{EnvMinCount, &cfg.MinCount},
	} {
		if err := setInt(v.dst, v.key); err != nil {
			return err
		}
	}
	if s := env(EnvMaxBodyBytes); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxBodyBytes, err)
		}
		cfg.MaxBodyBytes = n
	}
	setBool(&cfg.RespectRobots, EnvRespectRobots)
	setBool(&cfg.Verbose, EnvVerbose)
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if s := env(key); s != "" {
		*dst = s
	}
}

func setBool(dst *bool, key string) {
	if s := strings.ToLower(env(key)); s != "" {
		*dst = s == "1" || s == "true" || s == "yes" || s == "on"
	}
}

func setInt(dst *int, key string) error {
	s := env(key)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
