package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthlabs/hearthd/pkg/metrics"
)

func TestStartMetricsServesPrometheus(t *testing.T) {
	ls := NewListenerSet(testLog(&bytes.Buffer{}))
	require.NoError(t, StartMetrics("127.0.0.1:0", ls, testLog(&bytes.Buffer{})))
	require.Equal(t, 1, ls.Len())
	defer ls.CloseAll(false)

	metrics.WakeBroadcasts.Inc()

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", ls.Addrs()[0]))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "hearthd_wake_broadcasts_total")
}

func TestStartMetricsBadAddr(t *testing.T) {
	ls := NewListenerSet(testLog(&bytes.Buffer{}))
	err := StartMetrics("256.0.0.1:bad", ls, testLog(&bytes.Buffer{}))
	require.Error(t, err)
}
