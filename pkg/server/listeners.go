package server

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/hearthlabs/hearthd/pkg/logging"
)

// ListenerSet tracks every listening socket the daemon binds. The shutdown
// sequencer force-closes the whole set through CloseAll; the once-guard makes
// the closure idempotent no matter how it is reached.
type ListenerSet struct {
	log *logging.Logger

	mu        sync.Mutex
	listeners []net.Listener

	closed     atomic.Bool
	closeCalls atomic.Int32
}

// NewListenerSet creates an empty ListenerSet.
func NewListenerSet(log *logging.Logger) *ListenerSet {
	return &ListenerSet{log: log}
}

// Add registers a listener. Adding after CloseAll closes the listener
// immediately.
func (ls *ListenerSet) Add(l net.Listener) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.closed.Load() {
		l.Close()
		return
	}
	ls.listeners = append(ls.listeners, l)
}

// Addrs returns the bound addresses of the tracked listeners.
func (ls *ListenerSet) Addrs() []net.Addr {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	addrs := make([]net.Addr, 0, len(ls.listeners))
	for _, l := range ls.listeners {
		addrs = append(addrs, l.Addr())
	}
	return addrs
}

// Len returns the number of tracked listeners.
func (ls *ListenerSet) Len() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.listeners)
}

// CloseAll closes every tracked listener. Only the first call closes
// anything; later calls are no-ops. force distinguishes the sequencer's
// forced closure from an orderly stop in the logs.
func (ls *ListenerSet) CloseAll(force bool) {
	ls.closeCalls.Add(1)
	if !ls.closed.CompareAndSwap(false, true) {
		return
	}

	ls.mu.Lock()
	listeners := ls.listeners
	ls.listeners = nil
	ls.mu.Unlock()

	if force {
		ls.log.Notice("Forcibly closing %d listening sockets", len(listeners))
	} else {
		ls.log.Info("Closing %d listening sockets", len(listeners))
	}
	for _, l := range listeners {
		if err := l.Close(); err != nil {
			ls.log.Debug("Listener close error: %v", err)
		}
	}
}

// Closed reports whether the set has been closed.
func (ls *ListenerSet) Closed() bool {
	return ls.closed.Load()
}

// CloseCalls returns how many times CloseAll has been invoked.
func (ls *ListenerSet) CloseCalls() int {
	return int(ls.closeCalls.Load())
}
