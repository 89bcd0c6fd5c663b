package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/sergeknystautas/gitview/internal/logging"
	"github.com/sergeknystautas/gitview/internal/version"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid config")
)

const (
	// EnvConfigPath overrides the default config location.
	EnvConfigPath = "GITVIEW_CONFIG"

	DefaultGitBinary        = "git"
	DefaultCaptureTimeoutMs = 30000 // 30 seconds
	DefaultWatchDebounceMs  = 300
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

// Config represents the application configuration.
type Config struct {
	ConfigVersion    string       `yaml:"config_version,omitempty"`
	GitBinary        string       `yaml:"git_binary,omitempty"`
	CaptureTimeoutMs int          `yaml:"capture_timeout_ms,omitempty"`
	Watch            *WatchConfig `yaml:"watch,omitempty"`
	Log              *LogConfig   `yaml:"log,omitempty"`

	// LegacyWatchDebounceMs is the pre-0.2.0 location of watch.debounce_ms.
	// Migrate moves it and clears it.
	LegacyWatchDebounceMs int `yaml:"watch_debounce_ms,omitempty"`

	path string
}

// WatchConfig controls the git metadata watcher.
type WatchConfig struct {
	Enabled    *bool `yaml:"enabled,omitempty"`
	DebounceMs int   `yaml:"debounce_ms,omitempty"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// DefaultPath returns the config path: $GITVIEW_CONFIG, or
// ~/.gitview/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".gitview", "config.yaml"), nil
}

// CreateDefault creates a default config with the given config file path.
// The path is stored so that subsequent Save() calls write to the same location.
func CreateDefault(configPath string) *Config {
	return &Config{
		ConfigVersion:    version.Version,
		GitBinary:        DefaultGitBinary,
		CaptureTimeoutMs: DefaultCaptureTimeoutMs,
		Watch:            &WatchConfig{DebounceMs: DefaultWatchDebounceMs},
		Log:              &LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		path:             configPath,
	}
}

// Load loads the configuration from the specified path.
// The path is stored so that subsequent Save() calls write to the same location.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	// Apply migrations before validation
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.path = configPath
	return &cfg, nil
}

// LoadOrDefault loads configPath, falling back to defaults when the file
// does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if errors.Is(err, ErrConfigNotFound) {
		return CreateDefault(configPath), nil
	}
	return cfg, err
}

// Migrate rolls the config forward to the current schema, keyed by
// ConfigVersion. An empty version is treated as 0.0.0; a version that is not
// semver (such as "dev") is assumed current.
func (c *Config) Migrate() error {
	from := c.ConfigVersion
	if from == "" {
		from = "0.0.0"
	}
	v, err := semver.NewVersion(from)
	if err != nil {
		c.LegacyWatchDebounceMs = 0
		return nil
	}

	// 0.2.0 moved watch_debounce_ms under watch.
	if v.LessThan(semver.MustParse("0.2.0")) && c.LegacyWatchDebounceMs > 0 {
		if c.Watch == nil {
			c.Watch = &WatchConfig{}
		}
		if c.Watch.DebounceMs == 0 {
			c.Watch.DebounceMs = c.LegacyWatchDebounceMs
		}
	}
	c.LegacyWatchDebounceMs = 0
	return nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.CaptureTimeoutMs < 0 {
		return fmt.Errorf("%w: capture_timeout_ms must be >= 0", ErrInvalidConfig)
	}
	if c.Watch != nil && c.Watch.DebounceMs < 0 {
		return fmt.Errorf("%w: watch.debounce_ms must be >= 0", ErrInvalidConfig)
	}
	if strings.ContainsAny(c.GitBinary, "\n\r") {
		return fmt.Errorf("%w: git_binary must be a single line", ErrInvalidConfig)
	}
	if c.Log != nil {
		if c.Log.Level != "" {
			if _, err := logging.ParseLevel(c.Log.Level); err != nil {
				return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
			}
		}
		switch c.Log.Format {
		case "", "text", "json":
		default:
			return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalidConfig, c.Log.Format)
		}
	}
	return nil
}

// Save writes the config to the path it was loaded from or created with.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config path not set: use Load() or CreateDefault() with a path")
	}

	// Update config version to current binary version
	c.ConfigVersion = version.Version

	dir := filepath.Dir(c.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to a temporary file first, then rename for atomicity
	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Path returns the file the config was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.path
}

// GetGitBinary returns the git executable. Defaults to "git" on PATH.
func (c *Config) GetGitBinary() string {
	if strings.TrimSpace(c.GitBinary) == "" {
		return DefaultGitBinary
	}
	return c.GitBinary
}

// GetCaptureTimeoutMs returns the capture timeout in ms. Defaults to 30000.
func (c *Config) GetCaptureTimeoutMs() int {
	if c.CaptureTimeoutMs <= 0 {
		return DefaultCaptureTimeoutMs
	}
	return c.CaptureTimeoutMs
}

// CaptureTimeout returns the capture timeout as a time.Duration.
func (c *Config) CaptureTimeout() time.Duration {
	return time.Duration(c.GetCaptureTimeoutMs()) * time.Millisecond
}

// GetWatchEnabled reports whether the git watcher is enabled. Defaults to true.
func (c *Config) GetWatchEnabled() bool {
	if c.Watch == nil || c.Watch.Enabled == nil {
		return true
	}
	return *c.Watch.Enabled
}

// GetWatchDebounceMs returns the watcher debounce in ms. Defaults to 300.
func (c *Config) GetWatchDebounceMs() int {
	if c.Watch == nil || c.Watch.DebounceMs <= 0 {
		return DefaultWatchDebounceMs
	}
	return c.Watch.DebounceMs
}

// WatchDebounce returns the watcher debounce as a time.Duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.GetWatchDebounceMs()) * time.Millisecond
}

// GetLogLevel returns the configured log level. Defaults to "info".
func (c *Config) GetLogLevel() string {
	if c.Log == nil || c.Log.Level == "" {
		return DefaultLogLevel
	}
	return c.Log.Level
}

// GetLogFormat returns the configured log format. Defaults to "text".
func (c *Config) GetLogFormat() string {
	if c.Log == nil || c.Log.Format == "" {
		return DefaultLogFormat
	}
	return c.Log.Format
}
