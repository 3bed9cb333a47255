// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay metrics
var (
	// RelayConnectedClients tracks the number of attached WebSocket connections
	RelayConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_connected_clients",
			Help: "Number of attached WebSocket connections",
		},
	)

	// RelayActiveSessions tracks the number of joined sessions in the registry
	RelayActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_active_sessions",
			Help: "Number of joined sessions in the presence registry",
		},
	)

	// RelayBroadcastsTotal counts broadcasts issued by event name
	RelayBroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_broadcasts_total",
			Help: "Broadcasts issued by event name",
		},
		[]string{"event"},
	)

	// RelayDroppedEventsTotal counts inbound events dropped by reason
	RelayDroppedEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_dropped_events_total",
			Help: "Inbound events dropped by reason",
		},
		[]string{"reason"},
	)

	// RelaySweepEvictionsTotal counts sessions evicted by the heartbeat sweep
	RelaySweepEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_sweep_evictions_total",
			Help: "Sessions evicted by the heartbeat sweep",
		},
	)

	// RelaySlowClientDisconnects counts clients disconnected for full outbound buffers
	RelaySlowClientDisconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_slow_client_disconnects_total",
			Help: "Clients disconnected because their outbound buffer was full",
		},
	)
)

// HTTP surface metrics
var (
	// ConnectionLimitRejections counts upgrades rejected by the connection limiter
	ConnectionLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "connection_limit_rejections_total",
			Help: "WebSocket upgrades rejected by the global connection limiter",
		},
	)

	// UploadsTotal counts stored file uploads
	UploadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Files stored by the upload endpoint",
		},
	)

	// LoginSavesTotal counts persisted login records
	LoginSavesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "login_saves_total",
			Help: "Login records persisted",
		},
	)
)
