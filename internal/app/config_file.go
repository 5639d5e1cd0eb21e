package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
// Nested sections map onto the flag and env names.
type FileConfig struct {
	Fetch struct {
		Timeout       string `yaml:"timeout" json:"timeout"`
		UserAgent     string `yaml:"userAgent" json:"userAgent"`
		MaxAttempts   int    `yaml:"maxAttempts" json:"maxAttempts"`
		MaxRedirects  int    `yaml:"maxRedirects" json:"maxRedirects"`
		MaxBodyBytes  int64  `yaml:"maxBodyBytes" json:"maxBodyBytes"`
		RespectRobots bool   `yaml:"respectRobots" json:"respectRobots"`
	} `yaml:"fetch" json:"fetch"`

	Extract struct {
		Mode string `yaml:"mode" json:"mode"`
	} `yaml:"extract" json:"extract"`

	Segment struct {
		Backend string `yaml:"backend" json:"backend"`
		Dict    string `yaml:"dict" json:"dict"`
	} `yaml:"segment" json:"segment"`

	Chart struct {
		Type     string `yaml:"type" json:"type"`
		Backend  string `yaml:"backend" json:"backend"`
		TopN     int    `yaml:"topN" json:"topN"`
		MinCount int    `yaml:"minCount" json:"minCount"`
	} `yaml:"chart" json:"chart"`

	Render struct {
		PDFFont string `yaml:"pdfFont" json:"pdfFont"`
	} `yaml:"render" json:"render"`

	Server struct {
		Addr string `yaml:"addr" json:"addr"`
	} `yaml:"server" json:"server"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value set in fc onto cfg. Call it on
// Defaults() before env and flags so both can still override the file.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}
	if fc.Fetch.Timeout != "" {
		d, err := time.ParseDuration(fc.Fetch.Timeout)
		if err != nil {
			return fmt.Errorf("fetch.timeout: %w", err)
		}
		cfg.FetchTimeout = d
	}
	if fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if fc.Fetch.MaxAttempts > 0 {
		cfg.MaxAttempts = fc.Fetch.MaxAttempts
	}
	if fc.Fetch.MaxRedirects > 0 {
		cfg.MaxRedirects = fc.Fetch.MaxRedirects
	}
	if fc.Fetch.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = fc.Fetch.MaxBodyBytes
	}
	if fc.Fetch.RespectRobots {
		cfg.RespectRobots = true
	}
	if fc.Extract.Mode != "" {
		cfg.ExtractMode = fc.Extract.Mode
	}
	if fc.Segment.Backend != "" {
		cfg.SegmentBackend = fc.Segment.Backend
	}
	if fc.Segment.Dict != "" {
		cfg.SegmentDict = fc.Segment.Dict
	}
	if fc.Chart.Type != "" {
		cfg.ChartType = fc.Chart.Type
	}
	if fc.Chart.Backend != "" {
		cfg.Backend = fc.Chart.Backend
	}
	if fc.Chart.TopN > 0 {
		cfg.TopN = fc.Chart.TopN
	}
	if fc.Chart.MinCount > 0 {
		cfg.MinCount = fc.Chart.MinCount
	}
	if fc.Render.PDFFont != "" {
		cfg.PDFFontPath = fc.Render.PDFFont
	}
	if fc.Server.Addr != "" {
		cfg.Addr = fc.Server.Addr
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
	return nil
}
