package signals

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/hearthlabs/hearthd/pkg/logging"
)

// Mockable termination hooks for testing.
var (
	resetDisposition = func(sig os.Signal) { signal.Reset(sig) }
	raiseAbort       = func() error { return unix.Kill(unix.Getpid(), unix.SIGABRT) }
)

// CrashHandler responds to corruption-class signals (SIGSEGV, SIGFPE, SIGBUS,
// SIGSYS, SIGABRT). The process is already in an undefined state when it
// runs, so the path is best-effort: capture as much diagnostic output as
// possible, then terminate abnormally so a core image is produced.
type CrashHandler struct {
	log     *logging.Logger
	entered atomic.Bool
}

// NewCrashHandler creates a CrashHandler.
func NewCrashHandler(log *logging.Logger) *CrashHandler {
	return &CrashHandler{log: log}
}

// Handle logs a stack trace and aborts the process. It never returns to
// normal execution. A second corruption signal arriving while the first is
// being handled is dropped: the entered guard makes recursion impossible.
func (h *CrashHandler) Handle(sig os.Signal) {
	if !h.entered.CompareAndSwap(false, true) {
		return
	}

	h.log.CriticalStack("Memory corruption has been detected. Attempting to print a back trace and exit. { signal = %s }",
		SignalName(sig))

	// Restore the default SIGABRT disposition before aborting. Without this
	// the abort below would deliver SIGABRT straight back into this handler.
	resetDisposition(syscall.SIGABRT)

	// Raising SIGABRT under the default disposition terminates the process
	// and writes a core image if core dumps are enabled in the environment.
	raiseAbort()
}
