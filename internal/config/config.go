// Package config loads server settings from an optional YAML file and the
// OS_* environment variables. Environment values override the file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/olgasafonova/opensprinkler-mcp-server/internal/errors"
	"github.com/olgasafonova/opensprinkler-mcp-server/internal/opensprinkler"
	"gopkg.in/yaml.v3"
)

// Defaults applied before the file and environment are read.
const (
	DefaultTimeout       = 15 * time.Second
	DefaultMaxConcurrent = 4
	DefaultRateLimit     = 120
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Config holds controller connection and server settings
type Config struct {
	// BaseURL is the controller address (e.g., http://192.168.1.20)
	BaseURL string `yaml:"base_url"`

	// Password is the plaintext device password
	Password string `yaml:"password"`

	// PasswordHash is the MD5 digest of the device password. Wins over Password.
	PasswordHash string `yaml:"password_hash"`

	// Timeout bounds each controller request
	Timeout time.Duration `yaml:"timeout"`

	// MaxConcurrent bounds parallel controller requests
	MaxConcurrent int `yaml:"max_concurrent"`

	Log  LogConfig  `yaml:"log"`
	HTTP HTTPConfig `yaml:"http"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// HTTPConfig applies to the streamable HTTP transport only
type HTTPConfig struct {
	Addr string `yaml:"addr"`

	// RateLimit is requests per minute per client IP; 0 disables limiting
	RateLimit int `yaml:"rate_limit"`
}

// Default returns a Config with every default applied and no credential.
func Default() *Config {
	return &Config{
		BaseURL:       opensprinkler.DefaultBaseURL,
		Timeout:       DefaultTimeout,
		MaxConcurrent: DefaultMaxConcurrent,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		HTTP: HTTPConfig{
			RateLimit: DefaultRateLimit,
		},
	}
}

// Load builds the configuration. path names an optional YAML file; when empty
// OS_CONFIG is consulted. Environment variables are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("OS_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("OS_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("OS_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("OS_PASSWORD_HASH"); v != "" {
		c.PasswordHash = v
	}
	if v := os.Getenv("OS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apierrors.NewConfigError("OS_TIMEOUT", fmt.Sprintf("invalid duration %q", v))
		}
		c.Timeout = d
	}
	if v := os.Getenv("OS_MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apierrors.NewConfigError("OS_MAX_CONCURRENT", fmt.Sprintf("invalid integer %q", v))
		}
		c.MaxConcurrent = n
	}
	if v := os.Getenv("OS_HTTP_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apierrors.NewConfigError("OS_HTTP_RATE_LIMIT", fmt.Sprintf("invalid integer %q", v))
		}
		c.HTTP.RateLimit = n
	}
	if v := os.Getenv("OS_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("OS_LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	return nil
}

// Validate reports the first setting that prevents the server from starting.
func (c *Config) Validate() error {
	if c.Password == "" && c.PasswordHash == "" {
		return apierrors.NewConfigError("OS_PASSWORD", "set OS_PASSWORD (plaintext) or OS_PASSWORD_HASH (MD5)")
	}
	if c.Timeout <= 0 {
		return apierrors.NewConfigError("OS_TIMEOUT", "must be positive")
	}
	if c.MaxConcurrent < 1 {
		return apierrors.NewConfigError("OS_MAX_CONCURRENT", "must be at least 1")
	}
	if c.HTTP.RateLimit < 0 {
		return apierrors.NewConfigError("OS_HTTP_RATE_LIMIT", "must not be negative")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return apierrors.NewConfigError("OS_LOG_FORMAT", fmt.Sprintf("unknown format %q (want text or json)", c.Log.Format))
	}
	return nil
}

// HasPasswordHash reports whether the pre-hashed credential will be used.
func (c *Config) HasPasswordHash() bool {
	return c.PasswordHash != ""
}

// Client returns the controller settings for opensprinkler.NewClient.
func (c *Config) Client() opensprinkler.Config {
	return opensprinkler.Config{
		BaseURL:      c.BaseURL,
		Password:     c.Password,
		PasswordHash: c.PasswordHash,
	}
}

// ClientOptions returns the transport options derived from the settings.
func (c *Config) ClientOptions(logger *slog.Logger) []opensprinkler.ClientOption {
	return []opensprinkler.ClientOption{
		opensprinkler.WithTimeout(c.Timeout),
		opensprinkler.WithMaxConcurrent(c.MaxConcurrent),
		opensprinkler.WithLogger(logger),
	}
}

// NewLogger builds the slog logger described by the Log settings. An
// unknown level falls back to info.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// String renders the settings with credentials redacted.
func (c *Config) String() string {
	credential := "none"
	switch {
	case c.PasswordHash != "":
		credential = "password_hash (set)"
	case c.Password != "":
		credential = "password (set)"
	}
	return fmt.Sprintf("base_url=%s credential=%s timeout=%s max_concurrent=%d log=%s/%s http_rate_limit=%d",
		c.BaseURL, credential, c.Timeout, c.MaxConcurrent, c.Log.Level, c.Log.Format, c.HTTP.RateLimit)
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, apierrors.NewConfigError("OS_LOG_LEVEL", fmt.Sprintf("unknown level %q (want debug, info, warn or error)", s))
}
