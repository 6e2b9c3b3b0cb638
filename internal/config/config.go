// Package config defines the specsmith configuration surface: the stage
// endpoint, the persona panel source, session persistence, and logging.
// Values come from a YAML config file, SPECSMITH_* environment variables,
// and command-line flags, merged by viper.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete specsmith configuration
type Config struct {
	Endpoint EndpointConfig `mapstructure:"endpoint"`
	Personas PersonaConfig  `mapstructure:"personas"`
	Session  SessionConfig  `mapstructure:"session"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	TUI      TUIConfig      `mapstructure:"tui"`
}

// EndpointConfig controls the connection to the remote stage service
type EndpointConfig struct {
	// BaseURL is the root of the stage service; stage names are appended
	// as path segments (e.g. {base_url}/questions).
	BaseURL string `mapstructure:"base_url"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `mapstructure:"api_key_env"`
	// TimeoutSeconds bounds each stage call (default: 45)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// MaxRetries is the number of transport-level retries for transient
	// failures (default: 2, 0 disables retries)
	MaxRetries int `mapstructure:"max_retries"`
	// RetryBaseDelayMs is the base backoff delay between retries (default: 2000)
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms"`
}

// PersonaConfig controls the expert panel
type PersonaConfig struct {
	// File is a YAML file defining the panel; empty uses the built-in panel.
	File string `mapstructure:"file"`
	// Filter is a glob over persona names; matching personas participate.
	// Empty means all enabled personas.
	Filter string `mapstructure:"filter"`
	// Watch reloads the persona file when it changes on disk (default: false)
	Watch bool `mapstructure:"watch"`
}

// SessionConfig controls snapshot persistence
type SessionConfig struct {
	// Dir is where session snapshots are stored.
	// If empty, defaults to {config dir}/sessions.
	Dir string `mapstructure:"dir"`
	// MaxAgeHours is the staleness cutoff for restoring snapshots
	// (default: 24, 0 disables the check)
	MaxAgeHours int `mapstructure:"max_age_hours"`
}

// OutputConfig controls where generated artifacts land
type OutputConfig struct {
	// SpecFile is the path the generated specification is written to (default: "SPEC.md")
	SpecFile string `mapstructure:"spec_file"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the log directory; empty logs to stderr.
	Dir string `mapstructure:"dir"`
}

// TUIConfig controls the watch-mode terminal UI
type TUIConfig struct {
	// Theme is the color theme (default: "default")
	// Options: "default", "monokai", "dracula", "nord"
	Theme string `mapstructure:"theme"`
}

// Timeout returns the per-stage timeout as a time.Duration
func (e *EndpointConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// RetryBaseDelay returns the base backoff delay as a time.Duration
func (e *EndpointConfig) RetryBaseDelay() time.Duration {
	return time.Duration(e.RetryBaseDelayMs) * time.Millisecond
}

// APIKey reads the configured API key from the environment.
func (e *EndpointConfig) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(e.APIKeyEnv)
}

// MaxAge returns the snapshot staleness cutoff as a time.Duration
func (s *SessionConfig) MaxAge() time.Duration {
	return time.Duration(s.MaxAgeHours) * time.Hour
}

// ResolveDir returns the session directory, defaulting under the config dir.
func (s *SessionConfig) ResolveDir() string {
	if s.Dir == "" {
		return filepath.Join(ConfigDir(), "sessions")
	}
	return expandHome(s.Dir)
}

// ResolveDir returns the log directory with ~ expanded.
func (l *LoggingConfig) ResolveDir() string {
	return expandHome(l.Dir)
}

func expandHome(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			BaseURL:          "http://localhost:8787/stages",
			APIKeyEnv:        "SPECSMITH_API_KEY",
			TimeoutSeconds:   45,
			MaxRetries:       2,
			RetryBaseDelayMs: 2000,
		},
		Personas: PersonaConfig{
			File:   "",
			Filter: "",
			Watch:  false,
		},
		Session: SessionConfig{
			Dir:         "", // Empty means {config dir}/sessions
			MaxAgeHours: 24,
		},
		Output: OutputConfig{
			SpecFile: "SPEC.md",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     "",
		},
		TUI: TUIConfig{
			Theme: "default",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("endpoint.base_url", defaults.Endpoint.BaseURL)
	viper.SetDefault("endpoint.api_key_env", defaults.Endpoint.APIKeyEnv)
	viper.SetDefault("endpoint.timeout_seconds", defaults.Endpoint.TimeoutSeconds)
	viper.SetDefault("endpoint.max_retries", defaults.Endpoint.MaxRetries)
	viper.SetDefault("endpoint.retry_base_delay_ms", defaults.Endpoint.RetryBaseDelayMs)

	viper.SetDefault("personas.file", defaults.Personas.File)
	viper.SetDefault("personas.filter", defaults.Personas.Filter)
	viper.SetDefault("personas.watch", defaults.Personas.Watch)

	viper.SetDefault("session.dir", defaults.Session.Dir)
	viper.SetDefault("session.max_age_hours", defaults.Session.MaxAgeHours)

	viper.SetDefault("output.spec_file", defaults.Output.SpecFile)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	viper.SetDefault("tui.theme", defaults.TUI.Theme)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when
// unmarshaling fails.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "specsmith")
	}
	// Fall back to ~/.config/specsmith
	home, err := os.UserHomeDir()
	if err != nil {
		return ".specsmith"
	}
	return filepath.Join(home, ".config", "specsmith")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
