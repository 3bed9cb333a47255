package relay

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/chatrelay/internal/domain"
	"github.com/pscheid92/chatrelay/internal/metrics"
)

const (
	defaultSweepInterval = 30 * time.Second
	defaultSessionTTL    = 90 * time.Second
	commandTimeout       = 5 * time.Second
	stopTimeout          = 10 * time.Second
)

// hubCmd is the command interface for the Hub actor.
type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type connectCmd struct {
	baseHubCmd
	id         uuid.UUID
	connection *websocket.Conn
}

type disconnectCmd struct {
	baseHubCmd
	id uuid.UUID
}

type eventCmd struct {
	baseHubCmd
	id       uuid.UUID
	envelope Envelope
}

type rosterCmd struct {
	baseHubCmd
	replyChannel chan []domain.RosterEntry
}

type clientCountCmd struct {
	baseHubCmd
	replyChannel chan int
}

type stopCmd struct {
	baseHubCmd
}

// Options configures a Hub. Zero values fall back to the production
// defaults (30s sweep, 90s TTL, real clock).
type Options struct {
	Clock         clockwork.Clock
	SweepInterval time.Duration
	SessionTTL    time.Duration
}

// Hub is the event router and broadcast engine. It owns the Registry and
// every connection's writer on a single goroutine: inbound events, the
// heartbeat sweep and shutdown all serialize through its command channel.
type Hub struct {
	cmdCh         chan hubCmd
	clock         clockwork.Clock
	registry      *Registry
	writers       map[uuid.UUID]*clientWriter
	sweepInterval time.Duration
	sessionTTL    time.Duration
	done          chan struct{}
}

func NewHub(opts Options) *Hub {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}

	h := &Hub{
		cmdCh:         make(chan hubCmd, 256),
		clock:         opts.Clock,
		registry:      NewRegistry(opts.Clock),
		writers:       make(map[uuid.UUID]*clientWriter),
		sweepInterval: opts.SweepInterval,
		sessionTTL:    opts.SessionTTL,
		done:          make(chan struct{}),
	}
	go h.run()
	return h
}

// --- Public API ---

// Connect attaches a freshly upgraded connection to the hub. The connection
// starts in the Connected state: it receives broadcasts but has no session
// until it joins.
func (h *Hub) Connect(id uuid.UUID, conn *websocket.Conn) {
	h.cmdCh <- connectCmd{id: id, connection: conn}
}

// Disconnect detaches a connection, removing its session (if any) exactly
// like an explicit leave. Safe to call for ids the hub has already dropped.
func (h *Hub) Disconnect(id uuid.UUID) {
	h.cmdCh <- disconnectCmd{id: id}
}

// Dispatch routes one inbound transport event.
func (h *Hub) Dispatch(id uuid.UUID, envelope Envelope) {
	h.cmdCh <- eventCmd{id: id, envelope: envelope}
}

// Roster returns the current presence snapshot. Returns nil if the command
// times out.
func (h *Hub) Roster() []domain.RosterEntry {
	replyCh := make(chan []domain.RosterEntry, 1)
	h.cmdCh <- rosterCmd{replyChannel: replyCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case roster := <-replyCh:
		return roster
	case <-timer.Chan():
		slog.Warn("Roster command timed out", "timeout", commandTimeout)
		return nil
	}
}

// ClientCount returns the number of attached connections (joined or not).
// Returns -1 if the command times out.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- clientCountCmd{replyChannel: replyCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("ClientCount command timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop shuts the hub down, closing every client connection. Blocks until
// the actor goroutine has exited or the stop timeout is reached.
func (h *Hub) Stop() {
	h.cmdCh <- stopCmd{}

	timer := h.clock.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-h.done:
		slog.Info("Hub stopped gracefully")
	case <-timer.Chan():
		slog.Warn("Hub stop timeout exceeded", "timeout", stopTimeout)
	}
}

// --- Actor loop ---

func (h *Hub) run() {
	ticker := h.clock.NewTicker(h.sweepInterval)
	defer ticker.Stop()
	defer close(h.done)

	for {
		select {
		case cmd := <-h.cmdCh:
			switch c := cmd.(type) {
			case connectCmd:
				h.handleConnect(c)
			case disconnectCmd:
				h.handleDisconnect(c.id)
			case eventCmd:
				h.handleEvent(c)
			case rosterCmd:
				c.replyChannel <- h.registry.Snapshot()
			case clientCountCmd:
				c.replyChannel <- len(h.writers)
			case stopCmd:
				h.handleStop()
				return
			}
		case <-ticker.Chan():
			h.handleSweep()
		}
	}
}

func (h *Hub) handleConnect(c connectCmd) {
	if old, exists := h.writers[c.id]; exists {
		old.stop()
	}
	h.writers[c.id] = newClientWriter(c.connection, h.clock)
	metrics.RelayConnectedClients.Set(float64(len(h.writers)))
	slog.Debug("Connection attached", "connection_id", c.id.String(), "total_connections", len(h.writers))
}

func (h *Hub) handleDisconnect(id uuid.UUID) {
	cw, exists := h.writers[id]
	if !exists {
		return
	}
	cw.stop()
	delete(h.writers, id)
	metrics.RelayConnectedClients.Set(float64(len(h.writers)))

	if sess, removed := h.registry.Remove(id); removed {
		metrics.RelayActiveSessions.Set(float64(h.registry.Len()))
		slog.Info("User disconnected", "username", sess.Username, "connection_id", id.String())
		h.broadcastRoster()
	} else {
		slog.Debug("Connection detached", "connection_id", id.String())
	}
}

func (h *Hub) handleEvent(c eventCmd) {
	if _, attached := h.writers[c.id]; !attached {
		slog.Debug("Dropping event from unknown connection", "connection_id", c.id.String(), "event", c.envelope.Event)
		metrics.RelayDroppedEventsTotal.WithLabelValues("unknown_connection").Inc()
		return
	}

	switch c.envelope.Event {
	case EventJoin:
		h.handleJoin(c.id, c.envelope.Data)
	case EventHeartbeat:
		h.registry.Touch(c.id)
	case EventTyping:
		h.handleTyping(c.id, c.envelope.Data)
	case EventChat:
		h.handleChat(c.envelope.Data)
	case EventLeave:
		h.handleLeave(c.id)
	default:
		slog.Debug("Dropping unknown event", "event", c.envelope.Event, "connection_id", c.id.String())
		metrics.RelayDroppedEventsTotal.WithLabelValues("unknown_event").Inc()
	}
}

func (h *Hub) handleJoin(id uuid.UUID, data json.RawMessage) {
	var payload JoinPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Username == "" {
		slog.Debug("Dropping join without username", "connection_id", id.String())
		metrics.RelayDroppedEventsTotal.WithLabelValues("invalid_join").Inc()
		return
	}

	sess := h.registry.Register(id, payload.Username, payload.Country)
	metrics.RelayActiveSessions.Set(float64(h.registry.Len()))
	slog.Info("User joined", "username", sess.Username, "connection_id", id.String())
	h.broadcastRoster()
}

func (h *Hub) handleTyping(id uuid.UUID, data json.RawMessage) {
	var username string
	if err := json.Unmarshal(data, &username); err != nil {
		slog.Debug("Dropping malformed typing event", "connection_id", id.String())
		metrics.RelayDroppedEventsTotal.WithLabelValues("invalid_typing").Inc()
		return
	}
	h.broadcast(EventTyping, username, id)
}

func (h *Hub) handleChat(data json.RawMessage) {
	var msg domain.Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.ID == "" || msg.Username == "" {
		slog.Debug("Dropping chat message without id or username")
		metrics.RelayDroppedEventsTotal.WithLabelValues("invalid_chat").Inc()
		return
	}

	msg.ServerTime = h.clock.Now().UnixMilli()
	h.broadcast(EventChat, msg, uuid.Nil)
}

func (h *Hub) handleLeave(id uuid.UUID) {
	sess, removed := h.registry.Remove(id)
	if !removed {
		return
	}
	metrics.RelayActiveSessions.Set(float64(h.registry.Len()))
	slog.Info("User left", "username", sess.Username, "connection_id", id.String())
	h.broadcastRoster()
}

func (h *Hub) handleSweep() {
	evicted := h.registry.EvictStale(h.sessionTTL)
	if len(evicted) == 0 {
		return
	}

	for _, sess := range evicted {
		slog.Info("Removing inactive user", "username", sess.Username, "connection_id", sess.ConnectionID.String())
	}
	metrics.RelaySweepEvictionsTotal.Add(float64(len(evicted)))
	metrics.RelayActiveSessions.Set(float64(h.registry.Len()))

	// One roster broadcast per sweep, however many sessions it evicted.
	h.broadcastRoster()
}

func (h *Hub) handleStop() {
	slog.Info("Hub shutting down", "connections", len(h.writers), "sessions", h.registry.Len())
	for id, cw := range h.writers {
		cw.stopGraceful("Server shutting down")
		delete(h.writers, id)
		h.registry.Remove(id)
	}
	metrics.RelayConnectedClients.Set(0)
	metrics.RelayActiveSessions.Set(0)
}

// --- Broadcast engine ---

func (h *Hub) broadcastRoster() {
	h.broadcast(EventOnlineUsers, h.registry.Snapshot(), uuid.Nil)
}

// broadcast fans an event out to every attached connection, skipping
// `except` when it is non-nil. Delivery is fire-and-forget: a full outbound
// buffer marks the client as slow and it is disconnected.
func (h *Hub) broadcast(event string, payload any, except uuid.UUID) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal broadcast payload", "event", event, "error", err)
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		slog.Error("Failed to marshal broadcast envelope", "event", event, "error", err)
		return
	}
	metrics.RelayBroadcastsTotal.WithLabelValues(event).Inc()

	var slow []uuid.UUID
	for id, cw := range h.writers {
		if except != uuid.Nil && id == except {
			continue
		}
		if !cw.enqueue(frame) {
			slow = append(slow, id)
		}
	}

	for _, id := range slow {
		slog.Warn("Disconnecting slow client", "connection_id", id.String())
		metrics.RelaySlowClientDisconnects.Inc()
		h.handleDisconnect(id)
	}
}
