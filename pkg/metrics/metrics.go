// Package metrics defines the Prometheus instrumentation for hearthd.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SignalsReceived counts delivered OS signals by disposition behavior.
	SignalsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearthd_signals_received_total",
		Help: "OS signals received, labeled by disposition behavior.",
	}, []string{"behavior"})

	// ContentReloads counts content refresh attempts by result.
	ContentReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearthd_content_reloads_total",
		Help: "Content refresh attempts, labeled ok or error.",
	}, []string{"result"})

	// WakeBroadcasts counts wake broadcasts sent to worker goroutines.
	WakeBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hearthd_wake_broadcasts_total",
		Help: "Wake broadcasts delivered to the worker set.",
	})

	// ConnectionsServed counts accepted client connections.
	ConnectionsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hearthd_connections_total",
		Help: "Client connections accepted by the content listeners.",
	})
)
