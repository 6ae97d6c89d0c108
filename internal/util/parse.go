// Package util provides internal utility functions for hearthd.
package util

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// ParseSignal parses a signal name (e.g. "SIGTERM", "term") or number.
func ParseSignal(s string) (syscall.Signal, error) {
	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, "SIG") {
		upper = "SIG" + upper
	}
	if sig := unix.SignalNum(upper); sig != 0 {
		return sig, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unknown signal: %s", s)
	}
	return syscall.Signal(n), nil
}
