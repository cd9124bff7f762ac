package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig locates the task database.
type DatabaseConfig struct {
	// Path is the SQLite file path. ":memory:" keeps everything in RAM.
	Path string `mapstructure:"path" yaml:"path"`
}

// NotificationConfig controls reminder scheduling.
type NotificationConfig struct {
	// Enabled is the global switch; when false every reschedule only cancels.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// DefaultTime is the "HH:MM" clock applied to due dates without a time.
	DefaultTime string `mapstructure:"default_time" yaml:"default_time"`

	// SnoozeMinutes is the default snooze length.
	SnoozeMinutes int `mapstructure:"snooze_minutes" yaml:"snooze_minutes"`
}

// TelegramConfig configures Telegram delivery. The bot token itself is kept
// in the system keyring, not in this file.
type TelegramConfig struct {
	Enabled bool  `mapstructure:"enabled" yaml:"enabled"`
	ChatID  int64 `mapstructure:"chat_id" yaml:"chat_id"`
}

// DisplayConfig holds CLI rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database      DatabaseConfig     `mapstructure:"database" yaml:"database"`
	Notifications NotificationConfig `mapstructure:"notifications" yaml:"notifications"`
	Telegram      TelegramConfig     `mapstructure:"telegram" yaml:"telegram"`
	Display       DisplayConfig      `mapstructure:"display" yaml:"display"`
}

// DefaultTimeOfDay parses Notifications.DefaultTime into an offset from
// midnight. Malformed values fall back to 09:00.
func (c *AppConfig) DefaultTimeOfDay() time.Duration {
	d, err := ParseClock(c.Notifications.DefaultTime)
	if err != nil {
		return 9 * time.Hour
	}
	return d
}

// SnoozeDuration returns the configured snooze length, 15 minutes if unset.
func (c *AppConfig) SnoozeDuration() time.Duration {
	if c.Notifications.SnoozeMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Notifications.SnoozeMinutes) * time.Minute
}

// ParseClock parses an "HH:MM" string into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}

// configDir returns ~/.config/taskrecur, or "." when the home directory is
// unknown.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "taskrecur")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskrecur/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultDatabasePath returns ~/.config/taskrecur/tasks.db.
func DefaultDatabasePath() string {
	return filepath.Join(configDir(), "tasks.db")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Path: DefaultDatabasePath(),
		},
		Notifications: NotificationConfig{
			Enabled:       true,
			DefaultTime:   "09:00",
			SnoozeMinutes: 15,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.default_time", "09:00")
	v.SetDefault("notifications.snooze_minutes", 15)
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return DefaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if _, err := ParseClock(cfg.Notifications.DefaultTime); err != nil {
		return nil, fmt.Errorf("parsing config %s: notifications.default_time: %w", path, err)
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

	v.Set("database", cfg.Database)
	v.Set("notifications", cfg.Notifications)
	v.Set("telegram", cfg.Telegram)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
