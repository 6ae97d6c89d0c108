package status

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagStartsRunning(t *testing.T) {
	f := NewFlag()
	assert.Equal(t, Running, f.Get())
	assert.False(t, f.ShuttingDown())
}

func TestAdvanceIsMonotonic(t *testing.T) {
	f := NewFlag()

	assert.True(t, f.Advance(Stopping))
	assert.Equal(t, Stopping, f.Get())
	assert.True(t, f.ShuttingDown())

	// No regressions, no same-state transitions.
	assert.False(t, f.Advance(Running))
	assert.False(t, f.Advance(Stopping))
	assert.Equal(t, Stopping, f.Get())

	assert.True(t, f.Advance(Stopped))
	assert.False(t, f.Advance(Stopping))
	assert.Equal(t, Stopped, f.Get())
}

func TestAdvanceUnderContention(t *testing.T) {
	f := NewFlag()

	var wg sync.WaitGroup
	wins := make(chan bool, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- f.Advance(Stopping)
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	assert.Equal(t, 1, won, "exactly one racer performs the transition")
	assert.Equal(t, Stopping, f.Get())
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "RUNNING", Running.String())
	assert.Equal(t, "STOPPING", Stopping.String())
	assert.Equal(t, "STOPPED", Stopped.String())
	assert.Equal(t, "UNKNOWN", State(9).String())
}
