package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Unread ordering modes accepted by notifications.unread_ordering.
const (
	OrderingLastResponse  = "last_response"
	OrderingLatestRequest = "latest_request"
)

// APIConfig holds connection settings for the storefront notification API.
type APIConfig struct {
	// BaseURL is the API root, e.g. https://shop.example.com/api.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// NotificationsConfig holds notification cache and polling behaviour.
type NotificationsConfig struct {
	// PollIntervalSec is how often the unread set is refreshed.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// UnreadOrdering selects how overlapping unread fetches resolve:
	// "last_response" or "latest_request".
	UnreadOrdering string `mapstructure:"unread_ordering" yaml:"unread_ordering"`

	// DedupeLocal skips locally injected notifications whose id is already
	// known.
	DedupeLocal bool `mapstructure:"dedupe_local" yaml:"dedupe_local"`

	// DropdownLimit caps how many unread items the dropdown shows.
	DropdownLimit int `mapstructure:"dropdown_limit" yaml:"dropdown_limit"`
}

// PushConfig holds the optional websocket push feed settings.
type PushConfig struct {
	// URL of the websocket feed; empty disables push.
	URL string `mapstructure:"url" yaml:"url"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API           APIConfig           `mapstructure:"api" yaml:"api"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Push          PushConfig          `mapstructure:"push" yaml:"push"`
	Display       DisplayConfig       `mapstructure:"display" yaml:"display"`
	Log           LogConfig           `mapstructure:"log" yaml:"log"`
}

// ConfigDir returns ~/.config/storefront, falling back to the working
// directory when the home directory is unknown.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "storefront")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/storefront/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file is present.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:8000",
			TimeoutSec: 30,
			MaxRetries: 3,
		},
		Notifications: NotificationsConfig{
			PollIntervalSec: 30,
			UnreadOrdering:  OrderingLatestRequest,
			DropdownLimit:   5,
		},
		Display: DisplayConfig{Theme: "default"},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(ConfigDir(), "storefront.log"),
		},
	}
}

// setDefaults registers defaults so missing keys resolve to sensible values.
func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("api.max_retries", d.API.MaxRetries)
	v.SetDefault("notifications.poll_interval_sec", d.Notifications.PollIntervalSec)
	v.SetDefault("notifications.unread_ordering", d.Notifications.UnreadOrdering)
	v.SetDefault("notifications.dedupe_local", d.Notifications.DedupeLocal)
	v.SetDefault("notifications.dropdown_limit", d.Notifications.DropdownLimit)
	v.SetDefault("push.url", "")
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed STOREFRONT_ override file values
// (STOREFRONT_API_BASE_URL overrides api.base_url). If the file does not
// exist, defaults plus environment overrides are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that viper cannot type-check.
func (c *AppConfig) Validate() error {
	switch c.Notifications.UnreadOrdering {
	case OrderingLastResponse, OrderingLatestRequest:
	default:
		return fmt.Errorf(
			"notifications.unread_ordering must be %q or %q, got %q",
			OrderingLastResponse, OrderingLatestRequest,
			c.Notifications.UnreadOrdering,
		)
	}
	if c.Notifications.PollIntervalSec <= 0 {
		return fmt.Errorf("notifications.poll_interval_sec must be positive")
	}
	switch c.Display.Theme {
	case "default", "mono":
	default:
		return fmt.Errorf("display.theme must be \"default\" or \"mono\", got %q", c.Display.Theme)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("notifications", cfg.Notifications)
	v.Set("push", cfg.Push)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
