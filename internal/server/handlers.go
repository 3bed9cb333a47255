package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/chatrelay/internal/metrics"
	"github.com/pscheid92/chatrelay/internal/relay"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // any origin, matching the relay's open CORS policy
	},
}

// handleWebSocket upgrades the connection, assigns it an opaque connection
// id and pumps inbound frames into the hub until the transport drops. A
// read error is a disconnect and removes the session like a leave would.
func (s *Server) handleWebSocket(c echo.Context) error {
	if !s.limiter.Acquire() {
		metrics.ConnectionLimitRejections.Inc()
		slog.Warn("Rejecting connection: limit reached", "max_connections", s.config.MaxConnections)
		return c.String(http.StatusServiceUnavailable, "connection limit reached")
	}
	defer s.limiter.Release()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Warn("Failed to upgrade WebSocket", "error", err)
		return nil
	}

	connectionID := uuid.New()
	s.hub.Connect(connectionID, conn)
	slog.Debug("WebSocket connected", "connection_id", connectionID.String(), "remote_addr", c.Request().RemoteAddr)

	limiter := rate.NewLimiter(rate.Limit(s.config.ChatRateLimit), s.config.ChatRateBurst)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		if !limiter.Allow() {
			metrics.RelayDroppedEventsTotal.WithLabelValues("rate_limited").Inc()
			continue
		}

		var envelope relay.Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			slog.Debug("Dropping unparseable frame", "connection_id", connectionID.String())
			metrics.RelayDroppedEventsTotal.WithLabelValues("invalid_frame").Inc()
			continue
		}

		s.hub.Dispatch(connectionID, envelope)
	}

	s.hub.Disconnect(connectionID)
	return nil
}
