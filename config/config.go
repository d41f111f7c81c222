// Package config loads tasklens settings from a yaml file with TASKLENS_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cyp0633/tasklens/occurrence"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the complete tasklens configuration.
type Config struct {
	API      APIConfig   `mapstructure:"api" yaml:"api"`
	Timezone string      `mapstructure:"timezone" yaml:"timezone"`
	LogLevel string      `mapstructure:"log_level" yaml:"log_level"`
	Cache    CacheConfig `mapstructure:"cache" yaml:"cache"`
}

// APIConfig locates the Task Service.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Token   string        `mapstructure:"token" yaml:"token"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// EventsURL is the task update socket. Empty derives ws(s)://host/ws/tasks/
	// from BaseURL.
	EventsURL string `mapstructure:"events_url" yaml:"events_url"`
}

// CacheConfig controls occurrence memoization.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL        time.Duration `mapstructure:"ttl" yaml:"ttl"`
	MaxEntries int           `mapstructure:"max_entries" yaml:"max_entries"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: 15 * time.Second,
		},
		Timezone: "Local",
		LogLevel: "warn",
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        occurrence.DefaultCacheConfig.TTL,
			MaxEntries: occurrence.DefaultCacheConfig.MaxEntries,
		},
	}
}

// DefaultPath returns the user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".tasklens", "config.yaml")
	}
	return filepath.Join(dir, "tasklens", "config.yaml")
}

// Load reads the file at path over the defaults, then applies environment
// overrides such as TASKLENS_API_TOKEN. A missing file is not an error. An
// empty path means DefaultPath().
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix("TASKLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.token", cfg.API.Token)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.events_url", cfg.API.EventsURL)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.max_entries", cfg.Cache.MaxEntries)
}

// Validate checks values that would otherwise fail later.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.Cache.Enabled && c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive when caching is enabled")
	}
	return nil
}

// Location resolves Timezone. "" and "Local" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// EngineConfig builds the occurrence engine settings.
func (c *Config) EngineConfig() (occurrence.EngineConfig, error) {
	loc, err := c.Location()
	if err != nil {
		return occurrence.EngineConfig{}, err
	}
	ec := occurrence.DisabledCacheConfig
	ec.Location = loc
	if c.Cache.Enabled {
		ec.CacheEnabled = true
		ec.CacheConfig = occurrence.DefaultCacheConfig
		if c.Cache.TTL > 0 {
			ec.CacheConfig.TTL = c.Cache.TTL
		}
		ec.CacheConfig.MaxEntries = c.Cache.MaxEntries
	}
	return ec, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

// Write saves cfg as yaml, creating parent directories.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	// The file may hold the API token.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
