package signals

import (
	"os"
	"sync"

	"github.com/hearthlabs/hearthd/pkg/logging"
	"github.com/hearthlabs/hearthd/pkg/metrics"
)

// Refresher serializes content reload requests behind a mutex. Concurrent
// requests block until the in-flight reload finishes; none are dropped and
// none run in parallel.
type Refresher struct {
	mu      sync.Mutex
	log     *logging.Logger
	refresh func() error
}

// NewRefresher creates a Refresher around the content reload operation.
func NewRefresher(refresh func() error, log *logging.Logger) *Refresher {
	return &Refresher{log: log, refresh: refresh}
}

// Handle processes a reload signal.
func (r *Refresher) Handle(sig os.Signal) {
	r.log.Info("Reload requested { signal = %s }", SignalName(sig))
	r.Refresh()
}

// Refresh runs one serialized reload. A failed reload is logged and leaves
// the daemon serving its previous content.
func (r *Refresher) Refresh() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Debug("Content refresh starting")
	if err := r.refresh(); err != nil {
		metrics.ContentReloads.WithLabelValues("error").Inc()
		r.log.Error("An error occurred while trying to refresh disk based content: %v", err)
		return err
	}
	metrics.ContentReloads.WithLabelValues("ok").Inc()
	r.log.Info("Disk content refreshed")
	return nil
}
