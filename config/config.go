// Package config loads clipedit settings from a TOML or YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the full clipedit configuration.
type Config struct {
	Mpv      MpvConfig      `toml:"mpv" yaml:"mpv"`
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Playback PlaybackConfig `toml:"playback" yaml:"playback"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

// MpvConfig controls the mpv playback surface.
type MpvConfig struct {
	Binary         string        `toml:"binary" yaml:"binary"`
	Socket         string        `toml:"socket" yaml:"socket"`
	ConnectTimeout time.Duration `toml:"connect_timeout" yaml:"connect_timeout"`
}

// DatabaseConfig locates the clip collection.
type DatabaseConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// PlaybackConfig tunes the surface adapter and the duration prober.
type PlaybackConfig struct {
	// SeekHysteresis is how far, in raw seconds, the surface may drift from
	// the target before a seek is issued.
	SeekHysteresis float64       `toml:"seek_hysteresis" yaml:"seek_hysteresis"`
	PollInterval   time.Duration `toml:"poll_interval" yaml:"poll_interval"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	File   string `toml:"file" yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Mpv: MpvConfig{
			Binary:         "mpv",
			Socket:         "/tmp/clipedit-mpv.sock",
			ConnectTimeout: 5 * time.Second,
		},
		Playback: PlaybackConfig{
			SeekHysteresis: 0.1,
			PollInterval:   2 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Path returns the default config file location,
// $XDG_CONFIG_HOME/clipedit/config.toml.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "clipedit", "config.toml")
}

// ApplyEnvOverrides applies CLIPEDIT_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CLIPEDIT_SOCKET"); v != "" {
		c.Mpv.Socket = v
	}
	if v := os.Getenv("CLIPEDIT_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("CLIPEDIT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Mpv.Binary == "" {
		errs = append(errs, errors.New("mpv.binary must not be empty"))
	}
	if c.Mpv.Socket == "" {
		errs = append(errs, errors.New("mpv.socket must not be empty"))
	}
	if c.Mpv.ConnectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("mpv.connect_timeout must be positive, got %s", c.Mpv.ConnectTimeout))
	}
	if c.Playback.SeekHysteresis <= 0 {
		errs = append(errs, fmt.Errorf("playback.seek_hysteresis must be positive, got %v", c.Playback.SeekHysteresis))
	}
	if c.Playback.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("playback.poll_interval must be positive, got %s", c.Playback.PollInterval))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
