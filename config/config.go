// Package config provides configuration loading and management for
// constraintsim. Configuration only shapes the command-line surfaces; it
// never alters rules or verdicts.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete constraintsim configuration
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Report ReportConfig `yaml:"report"`
	Batch  BatchConfig  `yaml:"batch"`
	Watch  WatchConfig  `yaml:"watch"`
}

// LogConfig configures diagnostic logging on stderr
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
	// Format is text or json
	Format string `yaml:"format"`
}

// ReportConfig configures how results are printed
type ReportConfig struct {
	// Format is text or json
	Format string `yaml:"format"`
	// Color is auto, always, or never
	Color string `yaml:"color"`
}

// BatchConfig configures multi-file evaluation
type BatchConfig struct {
	// Workers bounds concurrent evaluations (>= 1)
	Workers int `yaml:"workers"`
	// MetricsFile is a Prometheus textfile path; empty disables it
	MetricsFile string `yaml:"metrics_file"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	// Debounce is the quiet period before a change is re-evaluated
	Debounce time.Duration `yaml:"debounce"`
	// Extensions are the file extensions watched inside directories
	Extensions []string `yaml:"extensions"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	formats    = []string{"text", "json"}
	colorModes = []string{"auto", "always", "never"}
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Report: ReportConfig{
			Format: "text",
			Color:  "auto",
		},
		Batch: BatchConfig{
			Workers:     4,
			MetricsFile: "",
		},
		Watch: WatchConfig{
			Debounce:   500 * time.Millisecond,
			Extensions: []string{".json", ".yaml", ".yml", ".hcl"},
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %s, got %q", strings.Join(logLevels, ", "), c.Log.Level)
	}
	if !slices.Contains(formats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of %s, got %q", strings.Join(formats, ", "), c.Log.Format)
	}
	if !slices.Contains(formats, c.Report.Format) {
		return fmt.Errorf("report.format must be one of %s, got %q", strings.Join(formats, ", "), c.Report.Format)
	}
	if !slices.Contains(colorModes, c.Report.Color) {
		return fmt.Errorf("report.color must be one of %s, got %q", strings.Join(colorModes, ", "), c.Report.Color)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1")
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive")
	}
	for _, ext := range c.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("watch.extensions entry %q must look like .json", ext)
		}
	}
	return nil
}

// SlogLevel returns the configured log level. Unknown values map to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	layer, err := readLayer(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	config.Merge(layer)
	return config, nil
}

// readLayer decodes path onto a zero Config so that only the keys present
// in the file are set. Unknown keys are rejected.
func readLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	layer := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(layer); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return layer, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}

	// Report
	if other.Report.Format != "" {
		c.Report.Format = other.Report.Format
	}
	if other.Report.Color != "" {
		c.Report.Color = other.Report.Color
	}

	// Batch
	if other.Batch.Workers != 0 {
		c.Batch.Workers = other.Batch.Workers
	}
	if other.Batch.MetricsFile != "" {
		c.Batch.MetricsFile = other.Batch.MetricsFile
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if len(other.Watch.Extensions) > 0 {
		c.Watch.Extensions = slices.Clone(other.Watch.Extensions)
	}
}
