package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hearthd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	assert.Equal(t, 100*time.Millisecond, Default().Shutdown.SettleDelay.Std())
	assert.Equal(t, 1*time.Second, Default().Shutdown.DrainStep.Std())
	assert.Equal(t, 3, Default().Shutdown.DrainSteps)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen = "0.0.0.0:8080"
workers = 16
pid-file = "/tmp/hearthd.pid"

[content]
dir = "/srv/content"
watch = true

[log]
level = "debug"
file = "/var/log/hearthd.log"

[shutdown]
settle-delay = "50ms"
drain-step = "250ms"
drain-steps = 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Listen)
	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, "/tmp/hearthd.pid", cfg.PIDFile)
	assert.Equal(t, "/srv/content", cfg.Content.Dir)
	assert.True(t, cfg.Content.Watch)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 50*time.Millisecond, cfg.Shutdown.SettleDelay.Std())
	assert.Equal(t, 250*time.Millisecond, cfg.Shutdown.DrainStep.Std())
	assert.Equal(t, 2, cfg.Shutdown.DrainSteps)

	// Settings the file omits keep their defaults.
	assert.Equal(t, Default().MetricsListen, cfg.MetricsListen)
	assert.Equal(t, Default().Log.MaxSizeMB, cfg.Log.MaxSizeMB)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "[shutdown]\nsettle-delay = \"soon\"\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen", func(c *Config) { c.Listen = "" }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"empty content dir", func(c *Config) { c.Content.Dir = "" }},
		{"negative settle delay", func(c *Config) { c.Shutdown.SettleDelay = Duration(-time.Second) }},
		{"negative drain steps", func(c *Config) { c.Shutdown.DrainSteps = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
