package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. TEAMINBOX_VIEWER_EMAIL.
const envPrefix = "TEAMINBOX"

// ViewerConfig identifies the person using the client.
type ViewerConfig struct {
	// Email is matched against notification text and recipients.
	Email string `mapstructure:"email" yaml:"email"`
}

// ServicesConfig holds the base URLs of the remote services.
type ServicesConfig struct {
	NotificationsURL string `mapstructure:"notifications_url" yaml:"notifications_url"`
	AuthorizationURL string `mapstructure:"authorization_url" yaml:"authorization_url"`
}

// FeedConfig controls the notification poller.
type FeedConfig struct {
	// PollIntervalSec is how often (in seconds) the feed is fetched.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// FetchTimeoutSec bounds a single fetch.
	FetchTimeoutSec int `mapstructure:"fetch_timeout_sec" yaml:"fetch_timeout_sec"`
}

// ActionsConfig holds the display timings used after accept/decline.
type ActionsConfig struct {
	// RefreshDelayMs is how long to wait after a successful action before
	// forcing a feed refresh, so the server has settled.
	RefreshDelayMs int `mapstructure:"refresh_delay_ms" yaml:"refresh_delay_ms"`

	// ProcessingHoldMs keeps the processing indicator visible after success.
	ProcessingHoldMs int `mapstructure:"processing_hold_ms" yaml:"processing_hold_ms"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	File        string `mapstructure:"file" yaml:"file"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Viewer   ViewerConfig   `mapstructure:"viewer" yaml:"viewer"`
	Services ServicesConfig `mapstructure:"services" yaml:"services"`
	Feed     FeedConfig     `mapstructure:"feed" yaml:"feed"`
	Actions  ActionsConfig  `mapstructure:"actions" yaml:"actions"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// PollInterval returns the feed poll interval.
func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.Feed.PollIntervalSec) * time.Second
}

// FetchTimeout returns the per-fetch timeout.
func (c *AppConfig) FetchTimeout() time.Duration {
	return time.Duration(c.Feed.FetchTimeoutSec) * time.Second
}

// RefreshDelay returns the delay before the post-action refresh.
func (c *AppConfig) RefreshDelay() time.Duration {
	return time.Duration(c.Actions.RefreshDelayMs) * time.Millisecond
}

// ProcessingHold returns how long the processing indicator stays up
// after a successful action.
func (c *AppConfig) ProcessingHold() time.Duration {
	return time.Duration(c.Actions.ProcessingHoldMs) * time.Millisecond
}

// Validate checks that the settings needed to talk to the services exist.
func (c *AppConfig) Validate() error {
	var missing []string
	if c.Viewer.Email == "" {
		missing = append(missing, "viewer.email")
	}
	if c.Services.NotificationsURL == "" {
		missing = append(missing, "services.notifications_url")
	}
	if c.Services.AuthorizationURL == "" {
		missing = append(missing, "services.authorization_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ConfigDir returns ~/.config/teaminbox, or the working directory when the
// home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "teaminbox")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/teaminbox/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Feed: FeedConfig{
			PollIntervalSec: 30,
			FetchTimeoutSec: 30,
		},
		Actions: ActionsConfig{
			RefreshDelayMs:   500,
			ProcessingHoldMs: 1000,
		},
		Log: LogConfig{
			File: filepath.Join(ConfigDir(), "teaminbox.log"),
		},
	}
}

// setDefaults registers every key so that environment overrides apply
// even when the key is absent from the file.
func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("viewer.email", "")
	v.SetDefault("services.notifications_url", "")
	v.SetDefault("services.authorization_url", "")
	v.SetDefault("feed.poll_interval_sec", d.Feed.PollIntervalSec)
	v.SetDefault("feed.fetch_timeout_sec", d.Feed.FetchTimeoutSec)
	v.SetDefault("actions.refresh_delay_ms", d.Actions.RefreshDelayMs)
	v.SetDefault("actions.processing_hold_ms", d.Actions.ProcessingHoldMs)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.development", d.Log.Development)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error: defaults and TEAMINBOX_* environment
// variables still apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Non-positive timings fall back to the defaults.
	d := defaultAppConfig()
	if cfg.Feed.PollIntervalSec <= 0 {
		cfg.Feed.PollIntervalSec = d.Feed.PollIntervalSec
	}
	if cfg.Feed.FetchTimeoutSec <= 0 {
		cfg.Feed.FetchTimeoutSec = d.Feed.FetchTimeoutSec
	}
	if cfg.Actions.RefreshDelayMs < 0 {
		cfg.Actions.RefreshDelayMs = d.Actions.RefreshDelayMs
	}
	if cfg.Actions.ProcessingHoldMs < 0 {
		cfg.Actions.ProcessingHoldMs = d.Actions.ProcessingHoldMs
	}

	return cfg, nil
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

	v.Set("viewer", cfg.Viewer)
	v.Set("services", cfg.Services)
	v.Set("feed", cfg.Feed)
	v.Set("actions", cfg.Actions)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
