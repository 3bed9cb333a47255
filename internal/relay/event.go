package relay

import "encoding/json"

// Wire event names, client to server.
const (
	EventJoin      = "join"
	EventHeartbeat = "heartbeat"
	EventTyping    = "typing"
	EventChat      = "chat message"
	EventLeave     = "leave"
)

// Wire event names, server to client. EventChat and EventTyping are echoed
// under the same name.
const (
	EventOnlineUsers = "online users"
)

// Envelope is the JSON frame exchanged over the WebSocket in both
// directions: {"event": "...", "data": ...}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinPayload is the data of a "join" event. Username is required; a join
// without it is ignored.
type JoinPayload struct {
	Username string `json:"username"`
	Country  string `json:"country"`
}
