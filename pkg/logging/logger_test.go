package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(LevelWarn, &buf)

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("visible warn")
	l.Error("visible error")
	l.Critical("visible critical")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN: visible warn")
	assert.Contains(t, out, "ERROR: visible error")
	assert.Contains(t, out, "CRITICAL: visible critical")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(LevelError, &buf)

	l.Info("before")
	l.SetLevel(LevelDebug)
	l.Info("after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
}

func TestCriticalStackIncludesGoroutines(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(LevelDebug, &buf)

	l.CriticalStack("boom { signal = %s }", "SIGSEGV")

	out := buf.String()
	assert.Contains(t, out, "boom { signal = SIGSEGV }")
	assert.Contains(t, out, "goroutine")
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hearthd.log")

	var buf bytes.Buffer
	l := NewWithOutput(LevelInfo, &buf)
	l.EnableFile(FileConfig{Path: path, MaxSizeMB: 1})

	l.Notice("file line")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file line")
	assert.Contains(t, buf.String(), "file line")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelNotice, ParseLevel("NOTICE"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelCritical, ParseLevel("critical"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLevelStrings(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "NOTICE", LevelNotice.String())
	assert.Equal(t, "CRITICAL", LevelCritical.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}
