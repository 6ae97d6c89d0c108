package signals

import (
	"os"
	"sync"
	"time"

	"github.com/hearthlabs/hearthd/pkg/logging"
	"github.com/hearthlabs/hearthd/pkg/metrics"
	"github.com/hearthlabs/hearthd/pkg/status"
)

// Broadcaster wakes worker goroutines blocked in a wait so they re-check the
// shared status flag. Delivery is at-least-once and non-blocking; a worker
// may observe the wake before or after it reads the flag, so correctness
// rests on workers re-checking the flag after every wake, not on race-free
// delivery.
type Broadcaster struct {
	log *logging.Logger
	st  *status.Flag

	mu      sync.Mutex
	workers map[*Waker]struct{}

	// exitNotify gets a non-blocking send whenever a worker exits, so
	// WaitExited can re-evaluate the live count.
	exitNotify chan struct{}
}

// NewBroadcaster creates a Broadcaster bound to the process status flag.
func NewBroadcaster(st *status.Flag, log *logging.Logger) *Broadcaster {
	return &Broadcaster{
		log:        log,
		st:         st,
		workers:    make(map[*Waker]struct{}),
		exitNotify: make(chan struct{}, 1),
	}
}

// Register adds a worker to the wake set and returns its Waker. The worker
// must call Exit on the Waker when its loop terminates.
func (b *Broadcaster) Register(name string) *Waker {
	w := &Waker{
		b:    b,
		name: name,
		ch:   make(chan struct{}, 1),
	}
	b.mu.Lock()
	b.workers[w] = struct{}{}
	b.mu.Unlock()
	return w
}

// Broadcast delivers a wake to every live worker.
func (b *Broadcaster) Broadcast() {
	b.mu.Lock()
	targets := make([]*Waker, 0, len(b.workers))
	for w := range b.workers {
		targets = append(targets, w)
	}
	b.mu.Unlock()

	for _, w := range targets {
		select {
		case w.ch <- struct{}{}:
		default:
			// Wake already pending; one is enough.
		}
	}

	metrics.WakeBroadcasts.Inc()
	b.log.Debug("Wake broadcast delivered to %d workers", len(targets))
}

// Ping handles the internal wake signal disposition: it simply broadcasts.
// Workers apply the per-worker contract in Waker.Woken.
func (b *Broadcaster) Ping(sig os.Signal) {
	b.log.Debug("Status ping received { signal = %s }", SignalName(sig))
	b.Broadcast()
}

// Live returns the number of workers that have not yet exited.
func (b *Broadcaster) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.workers)
}

// WaitExited blocks until every registered worker has exited or the timeout
// elapses. It reports whether the worker set drained in time.
func (b *Broadcaster) WaitExited(timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if b.Live() == 0 {
			return true
		}
		select {
		case <-b.exitNotify:
		case <-deadline.C:
			return b.Live() == 0
		}
	}
}

// Waker is a worker's handle on the wake broadcast.
type Waker struct {
	b      *Broadcaster
	name   string
	ch     chan struct{}
	exited sync.Once
}

// C returns the wake channel. At most one wake is pending at a time.
func (w *Waker) C() <-chan struct{} {
	return w.ch
}

// Woken applies the worker-side wake contract: a wake that arrives while the
// process is still running is unexpected, so it is logged and reported as
// not-a-shutdown. The worker's own loop is responsible for observing the
// status flag and exiting.
func (w *Waker) Woken() bool {
	if !w.b.st.ShuttingDown() {
		w.b.log.Info("Worker '%s' was signaled but the status doesn't indicate a shutdown is in progress", w.name)
		return false
	}
	return true
}

// Exit removes the worker from the wake set. Safe to call more than once.
func (w *Waker) Exit() {
	w.exited.Do(func() {
		w.b.mu.Lock()
		delete(w.b.workers, w)
		w.b.mu.Unlock()
		select {
		case w.b.exitNotify <- struct{}{}:
		default:
		}
	})
}
