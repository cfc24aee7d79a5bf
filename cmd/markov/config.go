package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

const (
	backendMemory = "memory"
	backendSQLite = "sqlite"
)

// Config holds the tunables of a generation run. Every field can also be set
// from the command line, which takes precedence over the file.
type Config struct {
	LogLevel     string  `json:"log_level" yaml:"log_level"`
	Backend      string  `json:"backend" yaml:"backend"`
	Temperature  float64 `json:"temperature" yaml:"temperature"`
	TopK         int     `json:"top_k" yaml:"top_k"`
	MinFrequency int     `json:"min_frequency" yaml:"min_frequency"`
	Progress     bool    `json:"progress" yaml:"progress"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "warn",
		Backend:      backendMemory,
		Temperature:  1.0,
		TopK:         0,
		MinFrequency: 0,
		Progress:     false,
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch c.Backend {
	case backendMemory, backendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, backendMemory, backendSQLite)
	}
	if c.TopK < 0 {
		return fmt.Errorf("top_k must not be negative, got %d", c.TopK)
	}
	if c.MinFrequency < 0 {
		return fmt.Errorf("min_frequency must not be negative, got %d", c.MinFrequency)
	}
	return nil
}

// isYAML reports whether path should be read and written as YAML rather than JSON.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig reads the configuration from a JSON or YAML file at the given path.
// If the file doesn't exist, it creates one with default values; a failure to
// write it is reported on warn and the defaults are still returned.
func LoadConfig(path string, warn io.Writer) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		// If the file doesn't exist, create it with the default config.
		if os.IsNotExist(err) {
			var data []byte
			if isYAML(path) {
				data, err = yaml.Marshal(config)
			} else {
				data, err = json.MarshalIndent(config, "", "  ")
			}
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				_, _ = fmt.Fprintf(warn, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(file, config)
	} else {
		err = json.Unmarshal(file, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// parseLogLevel maps a config string to a slog level, defaulting to warn.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// newLogger writes text logs to w, which is stderr in production so that
// stdout only ever carries the generated text.
func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(level)}))
}
