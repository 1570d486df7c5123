// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.lagoon/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Server: base URL and access token of the remote chat service
//   - Composer: attachment limit for a draft message
//   - Transport: request/upload timeouts and the client-side rate limit
//
// Security: the access token is never logged; the config directory uses 0750
// permissions.
//
// Error Handling: sentinel errors checked via errors.Is(), wrapped with
// fmt.Errorf("%w: details", ErrXxx).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingServerURL indicates no chat server URL is configured.
	ErrMissingServerURL = errors.New("missing server URL")

	// ErrInvalidServerURL indicates the server URL is not a valid http(s) URL.
	ErrInvalidServerURL = errors.New("invalid server URL")

	// ErrMissingAccessToken indicates the access token is not set.
	ErrMissingAccessToken = errors.New("missing access token")

	// ErrInvalidAttachmentLimit indicates the attachment limit is out of range.
	ErrInvalidAttachmentLimit = errors.New("invalid attachment limit")

	// ErrInvalidTimeout indicates a timeout value is out of range.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidRateLimit indicates the request rate limit is out of range.
	ErrInvalidRateLimit = errors.New("invalid rate limit")

	// ErrInvalidHistoryLimit indicates the history limit is out of range.
	ErrInvalidHistoryLimit = errors.New("invalid history limit")
)

const (
	// DefaultAttachmentLimit matches the Pleroma default for
	// max_media_attachments in chats. The hosting application supplies the
	// effective limit per session; this is the value used when the config
	// file does not say.
	DefaultAttachmentLimit = 4

	// MaxAttachmentLimit is a sanity cap to catch typos in config files.
	MaxAttachmentLimit = 32

	// DefaultHistoryLimit is the default number of messages loaded when a
	// chat panel opens.
	DefaultHistoryLimit = 40

	// MaxHistoryLimit is the absolute maximum to keep panel startup cheap.
	MaxHistoryLimit = 500
)

// Config stores application configuration.
// SECURITY: AccessToken is explicitly masked in MarshalJSON(). When adding
// new sensitive fields, update MarshalJSON.
type Config struct {
	// Remote chat service
	ServerURL   string `mapstructure:"server_url" json:"server_url"`     // e.g. "https://example.social"
	AccessToken string `mapstructure:"access_token" json:"access_token"` // SENSITIVE: masked in MarshalJSON

	// Composer
	AttachmentLimit int `mapstructure:"attachment_limit" json:"attachment_limit"`

	// Transport
	RequestTimeoutSec int     `mapstructure:"request_timeout_sec" json:"request_timeout_sec"`
	UploadTimeoutSec  int     `mapstructure:"upload_timeout_sec" json:"upload_timeout_sec"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" json:"requests_per_second"`

	// Chat panel
	HistoryLimit int `mapstructure:"history_limit" json:"history_limit"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".lagoon")

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	viper.SetDefault("attachment_limit", DefaultAttachmentLimit)
	viper.SetDefault("request_timeout_sec", 30)
	viper.SetDefault("upload_timeout_sec", 120)
	viper.SetDefault("requests_per_second", 5.0)
	viper.SetDefault("history_limit", DefaultHistoryLimit)
}

// bindEnvVariables binds environment variables explicitly. Explicit binds
// keep the set of recognized variables auditable.
func bindEnvVariables() {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("server_url", "LAGOON_SERVER_URL")
	mustBind("access_token", "LAGOON_ACCESS_TOKEN")
	mustBind("attachment_limit", "LAGOON_ATTACHMENT_LIMIT")
	mustBind("requests_per_second", "LAGOON_REQUESTS_PER_SECOND")
}

// Validate checks that the configuration is usable. Returns the first
// violated sentinel error.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.ServerURL == "" {
		return fmt.Errorf("%w: set server_url in config or LAGOON_SERVER_URL", ErrMissingServerURL)
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidServerURL, c.ServerURL)
	}

	if c.AccessToken == "" {
		return fmt.Errorf("%w: set access_token in config or LAGOON_ACCESS_TOKEN", ErrMissingAccessToken)
	}

	if c.AttachmentLimit < 1 || c.AttachmentLimit > MaxAttachmentLimit {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidAttachmentLimit, c.AttachmentLimit, MaxAttachmentLimit)
	}

	if c.RequestTimeoutSec < 1 {
		return fmt.Errorf("%w: request_timeout_sec %d", ErrInvalidTimeout, c.RequestTimeoutSec)
	}
	if c.UploadTimeoutSec < 1 {
		return fmt.Errorf("%w: upload_timeout_sec %d", ErrInvalidTimeout, c.UploadTimeoutSec)
	}

	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRateLimit, c.RequestsPerSecond)
	}

	if c.HistoryLimit < 1 || c.HistoryLimit > MaxHistoryLimit {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidHistoryLimit, c.HistoryLimit, MaxHistoryLimit)
	}

	return nil
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging. Secrets of 8 chars or
// fewer are fully masked to prevent substring matching; longer ones keep the
// first and last 2 characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit masking of the access
// token so a Config can be logged or dumped safely.
func (c *Config) MarshalJSON() ([]byte, error) {
	type alias Config // Avoid infinite recursion
	masked := alias(*c)
	masked.AccessToken = maskSecret(c.AccessToken)
	return json.Marshal(masked)
}
