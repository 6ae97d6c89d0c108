package signals

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthlabs/hearthd/pkg/logging"
)

func TestConcurrentRefreshesSerialize(t *testing.T) {
	var inflight, maxInflight, total atomic.Int32

	refresh := func() error {
		cur := inflight.Add(1)
		if cur > maxInflight.Load() {
			maxInflight.Store(cur)
		}
		time.Sleep(10 * time.Millisecond)
		inflight.Add(-1)
		total.Add(1)
		return nil
	}

	var buf bytes.Buffer
	r := NewRefresher(refresh, logging.NewWithOutput(logging.LevelDebug, &buf))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Refresh()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(4), total.Load(), "no reload request is dropped")
	assert.Equal(t, int32(1), maxInflight.Load(), "reloads never overlap")
	assert.Equal(t, 4, strings.Count(buf.String(), "Disk content refreshed"))
}

func TestRefreshLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	r := NewRefresher(func() error { return errors.New("content dir unreadable") },
		logging.NewWithOutput(logging.LevelDebug, &buf))

	err := r.Refresh()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "content dir unreadable")
	assert.NotContains(t, buf.String(), "Disk content refreshed")
}

func TestHandleLogsSignal(t *testing.T) {
	var buf bytes.Buffer
	r := NewRefresher(func() error { return nil },
		logging.NewWithOutput(logging.LevelDebug, &buf))

	r.Handle(syscall.SIGHUP)
	assert.Contains(t, buf.String(), "SIGHUP")
	assert.Contains(t, buf.String(), "Disk content refreshed")
}
