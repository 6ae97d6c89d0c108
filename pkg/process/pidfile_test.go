package process

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadOwnPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearthd.pid")
	require.NoError(t, WritePIDFile(path))

	pid, live, err := ReadPIDFile(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.Equal(t, Alive, live)
}

func TestReadStalePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearthd.pid")
	// Use a PID above the default kernel pid_max; it cannot be running.
	require.NoError(t, os.WriteFile(path, []byte("4194304\n"), 0644))

	pid, live, err := ReadPIDFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4194304, pid)
	assert.Equal(t, Gone, live)
}

func TestReadGarbagePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearthd.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0644))

	_, live, err := ReadPIDFile(path)
	assert.Error(t, err)
	assert.Equal(t, Unknown, live)
}

func TestReadMissingPIDFile(t *testing.T) {
	_, live, err := ReadPIDFile(filepath.Join(t.TempDir(), "absent.pid"))
	assert.Error(t, err)
	assert.Equal(t, Unknown, live)
}

func TestRemovePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearthd.pid")
	require.NoError(t, WritePIDFile(path))
	require.NoError(t, RemovePIDFile(path))
	require.NoError(t, RemovePIDFile(path), "removing a missing pidfile is not an error")
}
