package content

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hearthlabs/hearthd/pkg/logging"
)

// watchDebounce coalesces bursts of filesystem events into one refresh.
const watchDebounce = 500 * time.Millisecond

// Watcher triggers a content refresh when files under the content directory
// change. Refreshes go through the same serialized path as the reload
// signal, so a watcher-driven refresh and a SIGHUP refresh never overlap.
type Watcher struct {
	dir     string
	log     *logging.Logger
	refresh func() error
	fw      *fsnotify.Watcher
	quit    chan struct{}
}

// NewWatcher creates a Watcher on dir. refresh must be the serialized
// refresh entry point.
func NewWatcher(dir string, refresh func() error, log *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		dir:     dir,
		log:     log,
		refresh: refresh,
		fw:      fw,
		quit:    make(chan struct{}),
	}, nil
}

// Start begins watching on a background goroutine.
func (w *Watcher) Start() {
	go w.loop()
	w.log.Info("Watching %s for content changes", w.dir)
}

// Stop ends the watch.
func (w *Watcher) Stop() {
	close(w.quit)
	w.fw.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.log.Debug("Content directory changed, refreshing")
			w.refresh()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("Content watcher error: %v", err)

		case <-w.quit:
			return
		}
	}
}
