package relay

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/chatrelay/internal/domain"
)

// Registry maps connection ids to sessions. It is NOT safe for concurrent
// use: the Hub owns it and touches it only from its actor goroutine.
// Snapshots preserve join order. Usernames are deliberately not unique
// across connections.
type Registry struct {
	clock    clockwork.Clock
	sessions map[uuid.UUID]*domain.Session
	order    []uuid.UUID
}

func NewRegistry(clock clockwork.Clock) *Registry {
	return &Registry{
		clock:    clock,
		sessions: make(map[uuid.UUID]*domain.Session),
	}
}

// Register inserts or replaces the session for a connection id and sets
// LastSeen to now. A re-register on the same id overwrites in place and
// keeps its roster position.
func (r *Registry) Register(id uuid.UUID, username, country string) domain.Session {
	sess := &domain.Session{
		ConnectionID: id,
		Username:     username,
		Country:      country,
		LastSeen:     r.clock.Now(),
	}
	if _, exists := r.sessions[id]; !exists {
		r.order = append(r.order, id)
	}
	r.sessions[id] = sess
	return *sess
}

// Touch updates LastSeen if the session exists. Unknown ids are a silent
// no-op.
func (r *Registry) Touch(id uuid.UUID) bool {
	sess, ok := r.sessions[id]
	if !ok {
		return false
	}
	sess.LastSeen = r.clock.Now()
	return true
}

// Remove deletes and returns the session if present. Idempotent: removing
// an absent id reports false and changes nothing.
func (r *Registry) Remove(id uuid.UUID) (domain.Session, bool) {
	sess, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	delete(r.sessions, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return *sess, true
}

// Snapshot returns the roster in join order. LastSeen is internal-only and
// deliberately omitted from the projection.
func (r *Registry) Snapshot() []domain.RosterEntry {
	roster := make([]domain.RosterEntry, 0, len(r.sessions))
	for _, id := range r.order {
		sess := r.sessions[id]
		roster = append(roster, domain.RosterEntry{
			Username:     sess.Username,
			Country:      sess.Country,
			ConnectionID: sess.ConnectionID.String(),
		})
	}
	return roster
}

// EvictStale removes every session whose silence exceeds ttl and returns
// the evicted sessions.
func (r *Registry) EvictStale(ttl time.Duration) []domain.Session {
	now := r.clock.Now()
	var evicted []domain.Session
	for _, sess := range r.sessions {
		if now.Sub(sess.LastSeen) > ttl {
			evicted = append(evicted, *sess)
		}
	}
	for _, sess := range evicted {
		r.Remove(sess.ConnectionID)
	}
	return evicted
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}
