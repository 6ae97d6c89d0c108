// Package process provides pidfile handling for the hearthd daemon and its
// control CLI.
package process

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Liveness describes the process recorded in a pidfile.
type Liveness int

const (
	// Alive means the recorded process exists.
	Alive Liveness = iota
	// Gone means the pidfile was valid but the process no longer exists.
	Gone
	// Unknown means the pidfile could not be read or parsed.
	Unknown
)

// WritePIDFile records the current process ID at path.
func WritePIDFile(path string) error {
	data := fmt.Sprintf("%d\n", os.Getpid())
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("writing pidfile: %w", err)
	}
	return nil
}

// RemovePIDFile deletes the pidfile. A missing file is not an error.
func RemovePIDFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ReadPIDFile reads the process ID recorded at path and probes whether that
// process is still alive using kill(pid, 0). EPERM counts as alive: the
// process exists but belongs to another user.
func ReadPIDFile(path string) (int, Liveness, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, Unknown, fmt.Errorf("reading pidfile: %w", err)
	}

	line := strings.TrimSpace(string(data))
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	pid, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || pid <= 0 {
		return 0, Unknown, fmt.Errorf("invalid pid in %s", path)
	}

	switch err := unix.Kill(pid, 0); {
	case err == nil:
		return pid, Alive, nil
	case errors.Is(err, unix.ESRCH):
		return pid, Gone, nil
	case errors.Is(err, unix.EPERM):
		return pid, Alive, nil
	default:
		return pid, Unknown, fmt.Errorf("probing process %d: %w", pid, err)
	}
}
