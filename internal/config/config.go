// Package config provides configuration types and defaults for droidctl.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all configuration options for droidctl.
type Config struct {
	Droids  DroidsConfig  `mapstructure:"droids"`
	Editor  string        `mapstructure:"editor"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// DroidsConfig holds the directories scanned for droid definitions.
type DroidsConfig struct {
	// UserDir is the user-scope droid directory (default ~/.droidctl/droids).
	UserDir string `mapstructure:"user_dir"`
	// ProjectDir is the project-scope droid directory, resolved against
	// the working directory. Only consulted when present.
	ProjectDir string `mapstructure:"project_dir"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // trace, debug, info, warn, error
	Format string `mapstructure:"format"` // "auto" (default), "console", or "json"
}

// TracingConfig holds OpenTelemetry tracing configuration for serve mode.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Exporter     string  `mapstructure:"exporter"` // "file" (default), "stdout", or "otlp"
	FilePath     string  `mapstructure:"file_path"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// DefaultUserDroidsDir returns ~/.droidctl/droids, or empty string if the
// home directory is unavailable.
func DefaultUserDroidsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".droidctl", "droids")
}

// DefaultProjectDroidsDir returns the project droid directory relative to
// the working directory.
func DefaultProjectDroidsDir() string {
	return filepath.Join(".droidctl", "droids")
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/droidctl/traces/traces.jsonl or empty string if home
// dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "droidctl", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Droids: DroidsConfig{
			UserDir:    DefaultUserDroidsDir(),
			ProjectDir: DefaultProjectDroidsDir(),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "auto",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# droidctl Configuration

# Droid directories
droids:
  # User-scope droids (default: ~/.droidctl/droids)
  # user_dir: /path/to/droids
  #
  # Project-scope droids, resolved against the working directory
  # project_dir: .droidctl/droids

# Editor for 'droidctl edit' (falls back to $EDITOR, then vi)
# editor: nvim

# Logging
log:
  level: warn   # trace, debug, info, warn, error
  format: auto  # auto (console on a terminal, json otherwise), console, json

# OpenTelemetry tracing for serve mode
tracing:
  enabled: false
  exporter: file  # file, stdout, otlp
  # file_path: ~/.config/droidctl/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
