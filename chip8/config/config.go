// Package config loads emulator settings from defaults, an optional YAML
// file and CHIP8_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/timing"
)

const (
	BackendTerminal = "terminal"
	BackendHeadless = "headless"
	BackendSDL2     = "sdl2"

	AudioBell    = "bell"
	AudioSpeaker = "speaker"
	AudioNone    = "none"

	// FileName is looked up in the home directory when no path is given.
	FileName = ".chip8"

	EnvPrefix = "CHIP8"
)

// Config holds every setting the command line understands.
type Config struct {
	Backend          string        `mapstructure:"backend"`
	Audio            string        `mapstructure:"audio"`
	Keymap           string        `mapstructure:"keymap"`
	CyclePeriod      time.Duration `mapstructure:"cycle_period"`
	Scale            int           `mapstructure:"scale"`
	Debug            bool          `mapstructure:"debug"`
	LogLevel         string        `mapstructure:"log_level"`
	Serve            string        `mapstructure:"serve"`
	Frames           int           `mapstructure:"frames"`
	SnapshotInterval int           `mapstructure:"snapshot_interval"`
	SnapshotDir      string        `mapstructure:"snapshot_dir"`
}

func Defaults() Config {
	return Config{
		Backend:     BackendTerminal,
		Audio:       AudioBell,
		Keymap:      input.DefaultLayout,
		CyclePeriod: timing.DefaultCyclePeriod,
		Scale:       12,
		LogLevel:    "info",
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("audio", d.Audio)
	v.SetDefault("keymap", d.Keymap)
	v.SetDefault("cycle_period", d.CyclePeriod)
	v.SetDefault("scale", d.Scale)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("serve", d.Serve)
	v.SetDefault("frames", d.Frames)
	v.SetDefault("snapshot_interval", d.SnapshotInterval)
	v.SetDefault("snapshot_dir", d.SnapshotDir)
}

// Load reads the configuration. An explicit path must exist; otherwise
// ~/.chip8.{yaml,json,toml} is used when present.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(FileName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	} else {
		slog.Debug("Using config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks enumerations and the keymap layout.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendTerminal, BackendHeadless, BackendSDL2:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	switch c.Audio {
	case AudioBell, AudioSpeaker, AudioNone:
	default:
		return fmt.Errorf("unknown audio mode %q", c.Audio)
	}

	if _, err := input.ParseKeymap(c.Keymap); err != nil {
		return err
	}
	if c.CyclePeriod <= 0 {
		return fmt.Errorf("cycle_period must be positive, got %v", c.CyclePeriod)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Frames < 0 || c.SnapshotInterval < 0 {
		return errors.New("frames and snapshot_interval must not be negative")
	}

	return nil
}

// ParseLogLevel accepts debug, info, warn and error in any case.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
