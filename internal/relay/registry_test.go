package relay

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAppearsOnceInSnapshot(t *testing.T) {
	r := NewRegistry(clockwork.NewFakeClock())
	id := uuid.New()

	r.Register(id, "alice", "de")

	roster := r.Snapshot()
	require.Len(t, roster, 1)
	assert.Equal(t, "alice", roster[0].Username)
	assert.Equal(t, "de", roster[0].Country)
	assert.Equal(t, id.String(), roster[0].ConnectionID)
}

func TestRegistry_ReRegisterOverwritesInPlace(t *testing.T) {
	r := NewRegistry(clockwork.NewFakeClock())
	first := uuid.New()
	second := uuid.New()

	r.Register(first, "alice", "")
	r.Register(second, "bob", "")
	r.Register(first, "alice2", "fr")

	roster := r.Snapshot()
	require.Len(t, roster, 2)
	// Re-registering keeps the original roster position.
	assert.Equal(t, "alice2", roster[0].Username)
	assert.Equal(t, "fr", roster[0].Country)
	assert.Equal(t, "bob", roster[1].Username)
}

func TestRegistry_DuplicateUsernamesAllowed(t *testing.T) {
	r := NewRegistry(clockwork.NewFakeClock())

	r.Register(uuid.New(), "alice", "")
	r.Register(uuid.New(), "alice", "")

	assert.Equal(t, 2, r.Len())
}

func TestRegistry_TouchRefreshesLiveness(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := NewRegistry(clock)
	id := uuid.New()
	r.Register(id, "alice", "")

	clock.Advance(80 * time.Second)
	require.True(t, r.Touch(id))

	clock.Advance(80 * time.Second)
	evicted := r.EvictStale(90 * time.Second)
	assert.Empty(t, evicted, "touched session must survive the sweep")
}

func TestRegistry_TouchUnknownIsNoOp(t *testing.T) {
	r := NewRegistry(clockwork.NewFakeClock())
	assert.False(t, r.Touch(uuid.New()))
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	r := NewRegistry(clockwork.NewFakeClock())
	id := uuid.New()
	r.Register(id, "alice", "")

	sess, removed := r.Remove(id)
	require.True(t, removed)
	assert.Equal(t, "alice", sess.Username)

	_, removed = r.Remove(id)
	assert.False(t, removed)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_SnapshotPreservesJoinOrder(t *testing.T) {
	r := NewRegistry(clockwork.NewFakeClock())
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	names := []string{"alice", "bob", "carol"}
	for i, id := range ids {
		r.Register(id, names[i], "")
	}

	r.Remove(ids[1])
	r.Register(ids[1], "bob", "")

	roster := r.Snapshot()
	require.Len(t, roster, 3)
	assert.Equal(t, "alice", roster[0].Username)
	assert.Equal(t, "carol", roster[1].Username)
	assert.Equal(t, "bob", roster[2].Username, "removed and re-added moves to the end")
}

func TestRegistry_EvictStale(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := NewRegistry(clock)
	stale := uuid.New()
	fresh := uuid.New()

	r.Register(stale, "alice", "")
	clock.Advance(60 * time.Second)
	r.Register(fresh, "bob", "")
	clock.Advance(40 * time.Second)

	evicted := r.EvictStale(90 * time.Second)
	require.Len(t, evicted, 1)
	assert.Equal(t, "alice", evicted[0].Username)

	roster := r.Snapshot()
	require.Len(t, roster, 1)
	assert.Equal(t, "bob", roster[0].Username)
}

func TestRegistry_EvictStaleExactTTLSurvives(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := NewRegistry(clock)
	r.Register(uuid.New(), "alice", "")

	clock.Advance(90 * time.Second)
	assert.Empty(t, r.EvictStale(90*time.Second), "eviction requires silence to exceed the TTL")
}
