// Package config resolves runtime settings from defaults, an optional YAML
// file, STAYACTIVE_* environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stigoleg/stayactive/internal/keepalive"
	"github.com/stigoleg/stayactive/internal/util"
)

// Keys.
const (
	KeyInterval       = "interval"
	KeyMouseOnly      = "mouse_only"
	KeyKeyOnly        = "key_only"
	KeyTUI            = "tui"
	KeyLogLevel       = "log_level"
	KeyUinputPath     = "uinput_path"
	KeyMonitorTimeout = "monitor_timeout"
)

// Flag names.
const (
	FlagInterval       = "interval"
	FlagMouseOnly      = "mouse-only"
	FlagKeyOnly        = "key-only"
	FlagTUI            = "tui"
	FlagLogLevel       = "log-level"
	FlagConfig         = "config"
	FlagUinputPath     = "uinput-path"
	FlagMonitorTimeout = "monitor-timeout"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STAYACTIVE"

// MinInterval is the shortest accepted cycle interval.
const MinInterval = time.Second

// ErrConflictingModes is returned when both single-action modes are set.
var ErrConflictingModes = errors.New("--mouse-only and --key-only are mutually exclusive")

// Config is the resolved configuration.
type Config struct {
	Interval       time.Duration
	MouseOnly      bool
	KeyOnly        bool
	TUI            bool
	LogLevel       string
	UinputPath     string
	MonitorTimeout time.Duration

	// File is the config file that was read, if any.
	File string
}

// DefaultConfig holds the built-in defaults.
var DefaultConfig = Config{
	Interval:       keepalive.DefaultInterval,
	LogLevel:       "info",
	UinputPath:     "/dev/uinput",
	MonitorTimeout: 5 * time.Second,
}

// DefaultPath is $XDG_CONFIG_HOME/stayactive/config.yaml, or empty when no
// config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "stayactive", "config.yaml")
}

// New returns a viper instance with defaults and environment binding set.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyInterval, "60")
	v.SetDefault(KeyMouseOnly, false)
	v.SetDefault(KeyKeyOnly, false)
	v.SetDefault(KeyTUI, false)
	v.SetDefault(KeyLogLevel, DefaultConfig.LogLevel)
	v.SetDefault(KeyUinputPath, DefaultConfig.UinputPath)
	v.SetDefault(KeyMonitorTimeout, DefaultConfig.MonitorTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// RegisterFlags adds the daemon flags to fs and binds them to v.
func RegisterFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.String(FlagInterval, "60", "seconds between activity cycles (or a duration such as 90s, 2m)")
	fs.Bool(FlagMouseOnly, false, "only move the mouse")
	fs.Bool(FlagKeyOnly, false, "only press modifier keys")
	fs.Bool(FlagTUI, false, "show a live dashboard instead of plain log lines")
	fs.String(FlagLogLevel, DefaultConfig.LogLevel, "log level (debug, info, warn, error)")
	fs.String(FlagUinputPath, DefaultConfig.UinputPath, "uinput device node")
	fs.Duration(FlagMonitorTimeout, DefaultConfig.MonitorTimeout, "timeout for each monitor topology query")

	bind := map[string]string{
		KeyInterval:       FlagInterval,
		KeyMouseOnly:      FlagMouseOnly,
		KeyKeyOnly:        FlagKeyOnly,
		KeyTUI:            FlagTUI,
		KeyLogLevel:       FlagLogLevel,
		KeyUinputPath:     FlagUinputPath,
		KeyMonitorTimeout: FlagMonitorTimeout,
	}
	for key, flag := range bind {
		_ = v.BindPFlag(key, fs.Lookup(flag))
	}
}

// Load reads the config file (path, or DefaultPath when empty), then
// resolves and validates every key. A missing default file is not an error;
// a missing explicit file is.
func Load(v *viper.Viper, path string) (*Config, error) {
	file, err := readFile(v, path)
	if err != nil {
		return nil, err
	}

	interval, err := util.ParseInterval(v.GetString(KeyInterval))
	if err != nil {
		return nil, fmt.Errorf("invalid interval: %w", err)
	}

	cfg := &Config{
		Interval:       interval,
		MouseOnly:      v.GetBool(KeyMouseOnly),
		KeyOnly:        v.GetBool(KeyKeyOnly),
		TUI:            v.GetBool(KeyTUI),
		LogLevel:       v.GetString(KeyLogLevel),
		UinputPath:     v.GetString(KeyUinputPath),
		MonitorTimeout: v.GetDuration(KeyMonitorTimeout),
		File:           file,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(v *viper.Viper, path string) (string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return "", nil
		}
		if _, err := os.Stat(path); err != nil {
			return "", nil
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("read config %s: %w", path, err)
	}
	return v.ConfigFileUsed(), nil
}

// Validate checks cross-field constraints. Flag parsing already rejects
// conflicting modes, but the file and environment can still combine them.
func (c *Config) Validate() error {
	if c.MouseOnly && c.KeyOnly {
		return ErrConflictingModes
	}
	if c.Interval < MinInterval {
		return fmt.Errorf("interval %s is shorter than the minimum %s", c.Interval, MinInterval)
	}
	if c.MonitorTimeout <= 0 {
		return fmt.Errorf("monitor timeout must be positive, got %s", c.MonitorTimeout)
	}
	return nil
}

// Mode maps the mode flags to the scheduler mode.
func (c *Config) Mode() keepalive.Mode {
	switch {
	case c.MouseOnly:
		return keepalive.ModeMouseOnly
	case c.KeyOnly:
		return keepalive.ModeKeyOnly
	}
	return keepalive.ModeBoth
}
