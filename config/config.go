// Package config manages application configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds all settings for scraping and ranking.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `json:"db_path" yaml:"db_path"`
	// ClientSecretsPath is the OAuth client_secrets.json from the Google API console.
	ClientSecretsPath string `json:"client_secrets_path" yaml:"client_secrets_path"`
	// TokenPath is where the OAuth token is cached.
	TokenPath string `json:"token_path" yaml:"token_path"`
	// APIKey, when set, is used instead of OAuth.
	APIKey string `json:"api_key" yaml:"api_key"`

	// RequestsPerSecond throttles Data API requests (0 = unthrottled).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	// VideoParts are the videos.list parts fetched per video. Must include "statistics".
	VideoParts []string `json:"video_parts" yaml:"video_parts"`

	// LockTimeout bounds the wait for the database writer lock.
	LockTimeout Duration `json:"lock_timeout" yaml:"lock_timeout"`
	// LogLevel is a zerolog level name.
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// Duration is a time.Duration that reads "5s"-style strings or nanoseconds
// from JSON and YAML.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("duration must be a string or integer: %s", b)
	}
	*d = Duration(n)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if n, err := strconv.ParseInt(value.Value, 10, 64); err == nil {
		*d = Duration(n)
		return nil
	}
	v, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// configDir returns ~/.config/bestvids.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "bestvids")
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	dir := configDir()
	return &Config{
		DBPath:            filepath.Join(dir, "bestvids.db"),
		ClientSecretsPath: filepath.Join(dir, "client_secrets.json"),
		TokenPath:         filepath.Join(dir, "oauth2-token.json"),
		RequestsPerSecond: 5,
		VideoParts:        []string{"statistics"},
		LockTimeout:       Duration(5 * time.Second),
		LogLevel:          "info",
	}
}

// Override adjusts a loaded configuration before it is validated, typically
// from command-line flags.
type Override func(*Config)

// Load builds the configuration.
// Priority: overrides > env vars (including .env) > config file > defaults.
// An empty path searches bestvids.json and bestvids.yaml in the current
// directory, then in ~/.config/bestvids; none has to exist. An explicit path
// must exist. Files ending in .yaml or .yml are read as YAML, others as JSON.
func Load(path string, overrides ...Override) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	} else if err := cfg.loadFromFile(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load config file: %w", err)
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads the first config file found in the search path.
func (c *Config) loadFromFile() error {
	paths := []string{
		"bestvids.json",
		"bestvids.yaml",
		filepath.Join(configDir(), "bestvids.json"),
		filepath.Join(configDir(), "bestvids.yaml"),
	}

	for _, path := range paths {
		err := c.loadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		return err
	}

	return os.ErrNotExist
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadFromEnv overrides config with BESTVIDS_* environment variables.
func (c *Config) loadFromEnv() error {
	if v := os.Getenv("BESTVIDS_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("BESTVIDS_CLIENT_SECRETS"); v != "" {
		c.ClientSecretsPath = v
	}
	if v := os.Getenv("BESTVIDS_TOKEN_PATH"); v != "" {
		c.TokenPath = v
	}
	if v := os.Getenv("BESTVIDS_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("BESTVIDS_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BESTVIDS_RPS: %w", err)
		}
		c.RequestsPerSecond = rps
	}
	if v := os.Getenv("BESTVIDS_VIDEO_PARTS"); v != "" {
		var parts []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		c.VideoParts = parts
	}
	if v := os.Getenv("BESTVIDS_LOCK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BESTVIDS_LOCK_TIMEOUT: %w", err)
		}
		c.LockTimeout = Duration(d)
	}
	if v := os.Getenv("BESTVIDS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be non-negative")
	}
	if !slices.Contains(c.VideoParts, "statistics") {
		return fmt.Errorf("video_parts must include \"statistics\"")
	}
	if c.LockTimeout <= 0 {
		return fmt.Errorf("lock_timeout must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the parsed log level. Call it on a validated Config.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
