package domain

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Session is the registry record for one live connection. LastSeen is
// internal liveness state and is never exposed to clients (see RosterEntry).
type Session struct {
	ConnectionID uuid.UUID
	Username     string
	Country      string
	LastSeen     time.Time
}

// RosterEntry is the public projection of a Session broadcast to clients
// as part of the "online users" event.
type RosterEntry struct {
	Username     string `json:"username"`
	Country      string `json:"country"`
	ConnectionID string `json:"connectionId"`
}

// FileRef points at a previously uploaded file attached to a chat message.
type FileRef struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

// Message is a chat message. ServerTime is stamped by the relay at
// broadcast time; ClientTime is client-supplied and untrusted. Both are
// unix milliseconds. Messages are transient and never persisted.
type Message struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Country    string   `json:"country,omitempty"`
	Text       string   `json:"text,omitempty"`
	File       *FileRef `json:"file,omitempty"`
	ClientTime int64    `json:"clientTime,omitempty"`
	ServerTime int64    `json:"serverTime,omitempty"`
}

// LoginRecord is the durable login entry kept for seven days, keyed by
// username. Saving again replaces any prior record for that username.
type LoginRecord struct {
	Username string    `json:"username"`
	Country  string    `json:"country"`
	Expires  time.Time `json:"expires"`
}

// LoginStore persists login records with an expiry.
type LoginStore interface {
	// Save stores a record with Expires = now + 7 days, replacing any
	// prior record for the username.
	Save(ctx context.Context, username, country string) (LoginRecord, error)
	// Get returns the record for a username, or nil if absent or expired.
	Get(ctx context.Context, username string) (*LoginRecord, error)
}

// FileStore stores uploaded binaries and returns the name they are
// retrievable under.
type FileStore interface {
	Save(name string, r io.Reader) (string, error)
}
