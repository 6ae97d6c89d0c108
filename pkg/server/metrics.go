package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hearthlabs/hearthd/pkg/logging"
)

// StartMetrics binds the Prometheus metrics listener and registers it in the
// listener set, so the forced closure at shutdown covers it too.
func StartMetrics(addr string, ls *ListenerSet, log *logging.Logger) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding metrics listener: %w", err)
	}
	ls.Add(l)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{Handler: mux}
		if err := srv.Serve(l); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server error: %v", err)
		}
	}()

	log.Info("Metrics listener on %s", l.Addr())
	return nil
}
