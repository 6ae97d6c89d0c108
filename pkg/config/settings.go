// Package config provides configuration loading and defaults for the hearthd
// daemon. Settings live in a single TOML file; every field has a sensible
// default so the daemon starts with no file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that unmarshals from TOML strings like "100ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the top-level hearthd configuration.
type Config struct {
	// Listen is the address of the content listener.
	Listen string `toml:"listen"`
	// MetricsListen is the address of the Prometheus metrics listener.
	// Empty disables metrics.
	MetricsListen string `toml:"metrics-listen"`
	// Workers is the size of the connection worker pool.
	Workers int `toml:"workers"`
	// PIDFile is where the daemon records its process ID. Empty disables it.
	PIDFile string `toml:"pid-file"`

	Content  ContentConfig  `toml:"content"`
	Log      LogConfig      `toml:"log"`
	Shutdown ShutdownConfig `toml:"shutdown"`
}

// ContentConfig configures the disk content store.
type ContentConfig struct {
	// Dir is the directory content blobs are loaded from.
	Dir string `toml:"dir"`
	// Watch enables automatic refresh when files under Dir change.
	Watch bool `toml:"watch"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max-size-mb"`
	MaxBackups int    `toml:"max-backups"`
	MaxAgeDays int    `toml:"max-age-days"`
}

// ShutdownConfig configures the graceful-exit timing.
type ShutdownConfig struct {
	// SettleDelay is the pause between flipping the status flag and the
	// first wake broadcast.
	SettleDelay Duration `toml:"settle-delay"`
	// DrainStep and DrainSteps bound the voluntary-exit window.
	DrainStep  Duration `toml:"drain-step"`
	DrainSteps int      `toml:"drain-steps"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:        "127.0.0.1:4080",
		MetricsListen: "127.0.0.1:9180",
		Workers:       4,
		PIDFile:       "",
		Content: ContentConfig{
			Dir:   "/var/lib/hearthd/content",
			Watch: false,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxBackups: 3,
		},
		Shutdown: ShutdownConfig{
			SettleDelay: Duration(100 * time.Millisecond),
			DrainStep:   Duration(1 * time.Second),
			DrainSteps:  3,
		},
	}
}

// Load reads the configuration file at path, applying defaults for any
// setting the file omits. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Content.Dir == "" {
		return fmt.Errorf("content.dir must not be empty")
	}
	if c.Shutdown.SettleDelay < 0 || c.Shutdown.DrainStep < 0 {
		return fmt.Errorf("shutdown delays must not be negative")
	}
	if c.Shutdown.DrainSteps < 0 {
		return fmt.Errorf("shutdown.drain-steps must not be negative")
	}
	return nil
}
