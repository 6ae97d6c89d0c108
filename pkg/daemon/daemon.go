// Package daemon wires hearthd's lifecycle core to its collaborators: the
// content store, the network layer, the signal disposition registry, and the
// shutdown sequencer.
package daemon

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/hearthlabs/hearthd/pkg/config"
	"github.com/hearthlabs/hearthd/pkg/content"
	"github.com/hearthlabs/hearthd/pkg/logging"
	"github.com/hearthlabs/hearthd/pkg/process"
	"github.com/hearthlabs/hearthd/pkg/server"
	"github.com/hearthlabs/hearthd/pkg/shutdown"
	"github.com/hearthlabs/hearthd/pkg/signals"
	"github.com/hearthlabs/hearthd/pkg/status"
)

// Daemon is a fully wired hearthd instance.
type Daemon struct {
	cfg *config.Config
	log *logging.Logger

	st        *status.Flag
	store     *content.Store
	listeners *server.ListenerSet
	srv       *server.Server
	wake      *signals.Broadcaster
	refresher *signals.Refresher
	seq       *shutdown.Sequencer
	reg       *signals.Registry
	watcher   *content.Watcher
}

// New builds a Daemon from configuration. Nothing is bound or installed
// until Run.
func New(cfg *config.Config, log *logging.Logger) *Daemon {
	st := status.NewFlag()
	store := content.NewStore(cfg.Content.Dir, log)
	listeners := server.NewListenerSet(log)
	wake := signals.NewBroadcaster(st, log)

	seq := shutdown.NewSequencer(st, wake, listeners.CloseAll, log)
	seq.SettleDelay = cfg.Shutdown.SettleDelay.Std()
	seq.DrainStep = cfg.Shutdown.DrainStep.Std()
	seq.DrainSteps = cfg.Shutdown.DrainSteps

	refresher := signals.NewRefresher(store.Refresh, log)
	crash := signals.NewCrashHandler(log)
	reg := signals.NewRegistry(signals.DefaultTable(), crash, refresher, wake,
		func(sig os.Signal) { seq.Trigger(sig) }, log)

	srv := server.New(cfg.Listen, cfg.Workers, store, st, wake, listeners, log)

	return &Daemon{
		cfg:       cfg,
		log:       log,
		st:        st,
		store:     store,
		listeners: listeners,
		srv:       srv,
		wake:      wake,
		refresher: refresher,
		seq:       seq,
		reg:       reg,
	}
}

// Status returns the process lifecycle state.
func (d *Daemon) Status() status.State {
	return d.st.Get()
}

// Run starts the daemon and blocks until the shutdown sequence completes.
// Cancelling ctx triggers the same graceful-exit sequence as a termination
// signal.
func (d *Daemon) Run(ctx context.Context) error {
	if d.cfg.PIDFile != "" {
		if err := process.WritePIDFile(d.cfg.PIDFile); err != nil {
			return err
		}
		defer process.RemovePIDFile(d.cfg.PIDFile)
	}

	if err := d.refresher.Refresh(); err != nil {
		return fmt.Errorf("initial content load: %w", err)
	}

	if err := d.srv.Start(); err != nil {
		return err
	}
	if d.cfg.MetricsListen != "" {
		if err := server.StartMetrics(d.cfg.MetricsListen, d.listeners, d.log); err != nil {
			return err
		}
	}

	if d.cfg.Content.Watch {
		w, err := content.NewWatcher(d.store.Dir(), d.refresher.Refresh, d.log)
		if err != nil {
			d.log.Warn("Content watcher unavailable: %v", err)
		} else {
			d.watcher = w
			w.Start()
			defer w.Stop()
		}
	}

	// A partially registered disposition table must abort startup.
	if err := d.reg.Install(); err != nil {
		d.listeners.CloseAll(false)
		return fmt.Errorf("installing signal dispositions: %w", err)
	}

	d.log.Notice("hearthd ready (pid %d)", os.Getpid())

	select {
	case <-ctx.Done():
		d.seq.Trigger(syscall.SIGTERM)
		<-d.seq.Done()
	case <-d.seq.Done():
	}

	d.reg.Uninstall()
	d.srv.Wait()
	d.log.Info("hearthd shutdown complete")
	return nil
}
