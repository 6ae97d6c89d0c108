// Package signals implements hearthd's signal disposition registry and the
// handlers bound to it: crash diagnostics, content refresh, and the worker
// wake broadcast. The dispatch pump keeps handler-context work minimal; every
// operation that logs, locks, or sleeps runs on a goroutine spawned from the
// pump, never inline in it.
package signals

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/hearthlabs/hearthd/pkg/logging"
	"github.com/hearthlabs/hearthd/pkg/metrics"
)

// Behavior is the action bound to a signal number.
type Behavior int

const (
	// BehaviorIgnore silences a signal that would otherwise terminate the
	// process (broken-pipe conditions).
	BehaviorIgnore Behavior = iota
	// BehaviorCrash routes corruption-class signals to the crash handler.
	BehaviorCrash
	// BehaviorShutdown routes termination signals to the shutdown sequencer.
	BehaviorShutdown
	// BehaviorRefresh routes the reload signal to the refresh handler.
	BehaviorRefresh
	// BehaviorStatusPing routes the internal wake signal to the worker
	// broadcast.
	BehaviorStatusPing
)

func (b Behavior) String() string {
	switch b {
	case BehaviorIgnore:
		return "ignore"
	case BehaviorCrash:
		return "crash"
	case BehaviorShutdown:
		return "shutdown"
	case BehaviorRefresh:
		return "refresh"
	case BehaviorStatusPing:
		return "status-ping"
	default:
		return "unknown"
	}
}

// ErrAlreadyInstalled is returned when Install is called twice.
var ErrAlreadyInstalled = errors.New("signal dispositions already installed")

// DefaultTable returns the disposition table hearthd installs at startup.
// Every recognized signal maps to exactly one behavior.
func DefaultTable() map[os.Signal]Behavior {
	return map[os.Signal]Behavior{
		syscall.SIGINT:  BehaviorShutdown,
		syscall.SIGQUIT: BehaviorShutdown,
		syscall.SIGTERM: BehaviorShutdown,

		syscall.SIGHUP: BehaviorRefresh,

		syscall.SIGSEGV: BehaviorCrash,
		syscall.SIGFPE:  BehaviorCrash,
		syscall.SIGBUS:  BehaviorCrash,
		syscall.SIGSYS:  BehaviorCrash,
		syscall.SIGABRT: BehaviorCrash,

		syscall.SIGPIPE: BehaviorIgnore,

		syscall.SIGALRM: BehaviorStatusPing,
	}
}

// Registry installs the process signal dispositions and runs the dispatch
// pump. The table is fixed at construction and never mutated after Install.
type Registry struct {
	log         *logging.Logger
	table       map[os.Signal]Behavior
	crash       *CrashHandler
	refresher   *Refresher
	broadcaster *Broadcaster
	onShutdown  func(os.Signal)

	ch        chan os.Signal
	quit      chan struct{}
	installed atomic.Bool
}

// NewRegistry creates a Registry over the given disposition table.
// onShutdown is invoked from the pump for termination-class signals; it must
// be cheap (the sequencer's trigger only performs a compare-and-set and a
// goroutine spawn).
func NewRegistry(table map[os.Signal]Behavior, crash *CrashHandler, refresher *Refresher,
	broadcaster *Broadcaster, onShutdown func(os.Signal), log *logging.Logger) *Registry {
	return &Registry{
		log:         log,
		table:       table,
		crash:       crash,
		refresher:   refresher,
		broadcaster: broadcaster,
		onShutdown:  onShutdown,
		ch:          make(chan os.Signal, 16),
		quit:        make(chan struct{}),
	}
}

// Install validates the disposition table, registers every binding with the
// runtime, and starts the dispatch pump. A non-nil error is a fatal startup
// condition: the daemon must not run with partial signal coverage, and no
// rollback of earlier bindings is attempted.
func (r *Registry) Install() error {
	if len(r.table) == 0 {
		return errors.New("empty signal disposition table")
	}

	var ignored, handled []os.Signal
	for sig, behavior := range r.table {
		switch behavior {
		case BehaviorIgnore:
			ignored = append(ignored, sig)
		case BehaviorCrash, BehaviorShutdown, BehaviorRefresh, BehaviorStatusPing:
			handled = append(handled, sig)
		default:
			return fmt.Errorf("signal %s: unknown behavior %d", SignalName(sig), behavior)
		}
	}

	if !r.installed.CompareAndSwap(false, true) {
		return ErrAlreadyInstalled
	}

	signal.Ignore(ignored...)
	signal.Notify(r.ch, handled...)

	go r.pump()

	r.log.Debug("Signal dispositions installed (%d handled, %d ignored)", len(handled), len(ignored))
	return nil
}

// Uninstall removes the runtime bindings and stops the pump.
func (r *Registry) Uninstall() {
	if !r.installed.Load() {
		return
	}
	signal.Stop(r.ch)
	close(r.quit)
}

// Deliver injects a signal into the dispatch pump as if the OS had delivered
// it. Tests use this to exercise dispositions without racing real delivery.
func (r *Registry) Deliver(sig os.Signal) {
	r.ch <- sig
}

// pump is the dispatch loop. Its body stays minimal: read, count, hand off.
// All logging, locking, and sleeping happens on the spawned goroutines.
func (r *Registry) pump() {
	for {
		select {
		case sig := <-r.ch:
			behavior := r.table[sig]
			metrics.SignalsReceived.WithLabelValues(behavior.String()).Inc()
			switch behavior {
			case BehaviorShutdown:
				r.onShutdown(sig)
			case BehaviorCrash:
				go r.crash.Handle(sig)
			case BehaviorRefresh:
				go r.refresher.Handle(sig)
			case BehaviorStatusPing:
				go r.broadcaster.Ping(sig)
			}
		case <-r.quit:
			return
		}
	}
}

// SignalName returns the symbolic name for a signal (e.g. "SIGTERM").
func SignalName(sig os.Signal) string {
	s, ok := sig.(syscall.Signal)
	if !ok {
		if sig == nil {
			return "none"
		}
		return sig.String()
	}
	if name := unix.SignalName(s); name != "" {
		return name
	}
	return fmt.Sprintf("signal %d", int(s))
}
