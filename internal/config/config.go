// Package config provides configuration management for wellflow.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/xvierd/wellflow/internal/domain"
)

const defaultDataDir = "~/.wellflow"

// Storage backends for the durable key-value store.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds all configuration for the wellflow application.
type Config struct {
	Ledger        LedgerConfig       `mapstructure:"ledger"`
	Focus         FocusConfig        `mapstructure:"focus"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	MCP           MCPConfig          `mapstructure:"mcp"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Log           LogConfig          `mapstructure:"log"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// LedgerConfig holds XP ledger settings.
type LedgerConfig struct {
	DailyGoal int `mapstructure:"daily_goal"`
}

// FocusConfig holds defaults for ad-hoc focus sessions.
type FocusConfig struct {
	DefaultDuration   Duration `mapstructure:"default_duration"`
	DefaultBreakType  string   `mapstructure:"default_break_type"`
	SkipTrailingBreak bool     `mapstructure:"skip_trailing_break"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
	Backend string `mapstructure:"backend"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ThemeConfig holds TUI colors.
type ThemeConfig struct {
	ColorFocus  string `mapstructure:"color_focus"`
	ColorBreak  string `mapstructure:"color_break"`
	ColorPaused string `mapstructure:"color_paused"`
	ColorTitle  string `mapstructure:"color_title"`
	ColorHelp   string `mapstructure:"color_help"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorFocus:  "#7C6FE0",
		ColorBreak:  "#4ECDC4",
		ColorPaused: "#6B7280",
		ColorTitle:  "#A0AEC0",
		ColorHelp:   "#95A5A6",
	}
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Minutes returns the duration in whole minutes.
func (d Duration) Minutes() int {
	return int(time.Duration(d) / time.Minute)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Ledger: LedgerConfig{DailyGoal: domain.DefaultDailyGoal},
		Focus: FocusConfig{
			DefaultDuration:  Duration(25 * time.Minute),
			DefaultBreakType: string(domain.BreakPomodoro),
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   true,
		},
		MCP: MCPConfig{Enabled: true},
		Storage: StorageConfig{
			DataDir: defaultDataDir,
			Backend: BackendSQLite,
		},
		Log:   LogConfig{Level: "warn"},
		Theme: DefaultThemeConfig(),
	}
}

// Load loads the configuration from the default config file, creating it
// with defaults when missing.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from configPath.
func LoadFrom(configPath string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveTo(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the rest of the application cannot use.
func (c *Config) Validate() error {
	if _, err := domain.ValidateBreakType(c.Focus.DefaultBreakType); err != nil {
		return fmt.Errorf("focus.default_break_type: %w", err)
	}
	if c.Focus.DefaultDuration.Minutes() <= 0 {
		return fmt.Errorf("focus.default_duration: %w: %s", domain.ErrInvalidDuration, c.Focus.DefaultDuration)
	}
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// SetValue changes one key of the file at configPath. The file is only
// rewritten when the resulting configuration is valid.
func SetValue(configPath, key, value string) (*Config, error) {
	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	key = strings.ToLower(strings.TrimSpace(key))
	if !slices.Contains(v.AllKeys(), key) {
		return nil, fmt.Errorf("unknown config key %q", key)
	}
	v.Set(key, typedValue(value))

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir

	if err := v.WriteConfigAs(configPath); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}
	return &cfg, nil
}

// typedValue keeps numbers and booleans typed in the written TOML.
func typedValue(s string) any {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// Save saves the configuration to the default config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveTo(configPath, cfg)
}

// SaveTo writes cfg as TOML to configPath.
func SaveTo(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(configPath)
	v.Set("ledger.daily_goal", cfg.Ledger.DailyGoal)
	v.Set("focus.default_duration", cfg.Focus.DefaultDuration.String())
	v.Set("focus.default_break_type", cfg.Focus.DefaultBreakType)
	v.Set("focus.skip_trailing_break", cfg.Focus.SkipTrailingBreak)
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	v.Set("notifications.sound", cfg.Notifications.Sound)
	v.Set("mcp.enabled", cfg.MCP.Enabled)
	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("storage.backend", cfg.Storage.Backend)
	v.Set("log.level", cfg.Log.Level)
	v.Set("theme.color_focus", cfg.Theme.ColorFocus)
	v.Set("theme.color_break", cfg.Theme.ColorBreak)
	v.Set("theme.color_paused", cfg.Theme.ColorPaused)
	v.Set("theme.color_title", cfg.Theme.ColorTitle)
	v.Set("theme.color_help", cfg.Theme.ColorHelp)

	return v.WriteConfigAs(configPath)
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".wellflow", "config.toml"), nil
}

// GetDBPath returns the path to the database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "wellflow.db")
}

// GetStoreDir returns the directory of the file backend and session locks.
func GetStoreDir(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "store")
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// BreakType returns the configured default break type.
func (c *FocusConfig) BreakType() domain.BreakType {
	bt, err := domain.ValidateBreakType(c.DefaultBreakType)
	if err != nil {
		return domain.BreakPomodoro
	}
	return bt
}

// decodeHook lets Duration fields parse strings like "25m".
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	setDefaults(v)
	return v
}

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("ledger.daily_goal", d.Ledger.DailyGoal)
	v.SetDefault("focus.default_duration", d.Focus.DefaultDuration.String())
	v.SetDefault("focus.default_break_type", d.Focus.DefaultBreakType)
	v.SetDefault("focus.skip_trailing_break", d.Focus.SkipTrailingBreak)
	v.SetDefault("notifications.enabled", d.Notifications.Enabled)
	v.SetDefault("notifications.sound", d.Notifications.Sound)
	v.SetDefault("mcp.enabled", d.MCP.Enabled)
	v.SetDefault("storage.data_dir", d.Storage.DataDir)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("theme.color_focus", d.Theme.ColorFocus)
	v.SetDefault("theme.color_break", d.Theme.ColorBreak)
	v.SetDefault("theme.color_paused", d.Theme.ColorPaused)
	v.SetDefault("theme.color_title", d.Theme.ColorTitle)
	v.SetDefault("theme.color_help", d.Theme.ColorHelp)
}

func expandHome(dir string) (string, error) {
	if dir == "" {
		dir = defaultDataDir
	}
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(dir, "~")), nil
}
