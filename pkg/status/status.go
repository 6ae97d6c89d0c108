// Package status holds the process-wide lifecycle flag shared between the
// shutdown sequencer (single writer) and every worker loop (readers).
package status

import "sync/atomic"

// State is the process lifecycle state.
type State int32

const (
	Running State = iota
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Stopping:
		return "STOPPING"
	case Stopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Flag is the tri-state process status. It only ever advances:
// Running -> Stopping -> Stopped.
type Flag struct {
	v atomic.Int32
}

// NewFlag creates a Flag in the Running state.
func NewFlag() *Flag {
	return &Flag{}
}

// Get returns the current state.
func (f *Flag) Get() State {
	return State(f.v.Load())
}

// Advance moves the flag to the given state. It returns false without
// modifying the flag if the transition would move backwards.
func (f *Flag) Advance(to State) bool {
	for {
		cur := f.v.Load()
		if int32(to) <= cur {
			return false
		}
		if f.v.CompareAndSwap(cur, int32(to)) {
			return true
		}
	}
}

// ShuttingDown reports whether a shutdown has been initiated.
func (f *Flag) ShuttingDown() bool {
	return f.Get() != Running
}
