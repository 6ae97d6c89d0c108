// Package shutdown implements the timed multi-phase graceful-exit sequence
// for hearthd.
package shutdown

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/hearthlabs/hearthd/pkg/logging"
	"github.com/hearthlabs/hearthd/pkg/signals"
	"github.com/hearthlabs/hearthd/pkg/status"
)

const (
	// DefaultSettleDelay is how long the sequencer waits after flipping the
	// status flag before waking workers, so no worker is woken before the
	// new flag value is observable.
	DefaultSettleDelay = 100 * time.Millisecond

	// DefaultDrainStep and DefaultDrainSteps bound the voluntary-exit window
	// given to workers before listening sockets are force-closed.
	DefaultDrainStep  = 1 * time.Second
	DefaultDrainSteps = 3
)

// Phase is the sequencer's position in the shutdown protocol.
type Phase int32

const (
	PhaseRunning Phase = iota
	PhaseStopping
	PhaseDraining
	PhaseSocketsClosed
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "RUNNING"
	case PhaseStopping:
		return "STOPPING"
	case PhaseDraining:
		return "DRAINING"
	case PhaseSocketsClosed:
		return "SOCKETS_CLOSED"
	case PhaseStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Sequencer runs the graceful-exit protocol at most once per process
// lifetime. Phases are strictly sequential; once triggered, the sequence
// runs to completion with no cancellation.
type Sequencer struct {
	log            *logging.Logger
	st             *status.Flag
	wake           *signals.Broadcaster
	closeListeners func(force bool)

	// Timing knobs, defaulted to the fixed schedule above. Tests shrink them.
	SettleDelay time.Duration
	DrainStep   time.Duration
	DrainSteps  int

	triggered atomic.Bool
	phase     atomic.Int32
	done      chan struct{}
}

// NewSequencer creates a Sequencer. closeListeners is the network layer's
// force-close operation; it is invoked exactly once, with force=true.
func NewSequencer(st *status.Flag, wake *signals.Broadcaster, closeListeners func(force bool), log *logging.Logger) *Sequencer {
	return &Sequencer{
		log:            log,
		st:             st,
		wake:           wake,
		closeListeners: closeListeners,
		SettleDelay:    DefaultSettleDelay,
		DrainStep:      DefaultDrainStep,
		DrainSteps:     DefaultDrainSteps,
		done:           make(chan struct{}),
	}
}

// Phase returns the sequencer's current phase.
func (s *Sequencer) Phase() Phase {
	return Phase(s.phase.Load())
}

// Done returns a channel closed when the sequence has fully completed.
func (s *Sequencer) Done() <-chan struct{} {
	return s.done
}

// Trigger starts the shutdown sequence on a dedicated goroutine. The
// compare-and-set guard makes a second termination signal a logged no-op:
// the sequence never restarts or re-enters. Trigger itself is cheap enough
// to call from the dispatch pump.
func (s *Sequencer) Trigger(sig os.Signal) bool {
	if !s.triggered.CompareAndSwap(false, true) {
		s.log.Info("Ignoring %s: a shutdown is already in progress", signals.SignalName(sig))
		return false
	}
	go s.run(sig)
	return true
}

func (s *Sequencer) run(sig os.Signal) {
	// We assume the daemon is being shut down for a good reason.
	s.log.Critical("Signal received. The hearthd daemon is attempting a graceful exit. { signal = %s }",
		signals.SignalName(sig))

	// Flip the status flag on its own goroutine and join it at the end of
	// the sequence.
	s.phase.Store(int32(PhaseStopping))
	statusDone := make(chan struct{})
	go func() {
		s.st.Advance(status.Stopping)
		close(statusDone)
	}()

	// Give workers a moment so the status update is visible before any of
	// them is woken.
	time.Sleep(s.SettleDelay)

	// Wake every worker so blocked loops re-check the flag and begin their
	// own orderly exit.
	s.phase.Store(int32(PhaseDraining))
	s.wake.Broadcast()

	// Voluntary-exit window. Each step ends early once every registered
	// worker has acknowledged exit; the full schedule is the fallback for
	// workers that never exit on their own.
	for i := 0; i < s.DrainSteps; i++ {
		if s.wake.WaitExited(s.DrainStep) {
			break
		}
	}

	// Force-close every listening socket the daemon has bound.
	s.phase.Store(int32(PhaseSocketsClosed))
	s.closeListeners(true)

	// Wake the workers one more time so anything still blocked observes the
	// closed-connection state.
	s.wake.Broadcast()

	<-statusDone
	s.st.Advance(status.Stopped)
	s.phase.Store(int32(PhaseStopped))
	s.log.Notice("Graceful exit complete")
	close(s.done)
}
