// Package runtime owns the live layer: presence, fan-out, session handling
// and room teardown. It contains no storage or transport code.
package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"support-chat/contract"
	"support-chat/domain"
	"support-chat/errors"
)

// member couples a session with its delivery sink.
type member struct {
	session domain.Session
	sink    contract.EventSink
}

// roomState is the live presence of one room. Its mutex serializes every
// membership mutation and the count computation for emitted events, so a
// presence event can never carry a count the registry did not hold at the
// instant of the mutation.
type roomState struct {
	mu         sync.Mutex
	members    map[domain.ConnectionID]member
	emptySince time.Time
}

// Registry is the single source of truth for presence.
//
// The outer lock only guards the three maps; each room carries its own
// mutex so unrelated rooms never serialize against each other.
type Registry struct {
	mu     sync.RWMutex
	active map[domain.RoomID]struct{}
	rooms  map[domain.RoomID]*roomState
	conns  map[domain.ConnectionID]domain.RoomID
	log    *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		active: make(map[domain.RoomID]struct{}),
		rooms:  make(map[domain.RoomID]*roomState),
		conns:  make(map[domain.ConnectionID]domain.RoomID),
		log:    log,
	}
}

// Activate registers a roomId as joinable. Called by the room collaborator
// at creation time and when seeding from storage at startup.
func (r *Registry) Activate(roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[roomID] = struct{}{}
}

// Deactivate removes the room from the registry entirely and returns the
// sinks of the sessions that were still attached, so the caller can force
// their disconnection. Idempotent.
func (r *Registry) Deactivate(roomID domain.RoomID) []contract.EventSink {
	r.mu.Lock()
	delete(r.active, roomID)
	state, ok := r.rooms[roomID]
	delete(r.rooms, roomID)
	if !ok {
		r.mu.Unlock()
		return nil
	}
	// Room lock taken under the outer one: a concurrent Join has either
	// already inserted its member (collected below) or is still waiting on
	// one of the two locks and will fail the active check.
	state.mu.Lock()
	for connID := range state.members {
		delete(r.conns, connID)
	}
	r.mu.Unlock()
	defer state.mu.Unlock()
	sinks := make([]contract.EventSink, 0, len(state.members))
	for _, m := range state.members {
		sinks = append(sinks, m.sink)
	}
	state.members = map[domain.ConnectionID]member{}
	return sinks
}

func (r *Registry) IsActive(roomID domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.active[roomID]
	return ok
}

// Join inserts a session and returns it together with the online count
// computed under the room lock. A session belongs to one room for its whole
// life: a connection already bound to another room is refused. Re-joining
// the same room replaces the previous session; the replaced sink is closed
// unless the rejoin reuses it.
func (r *Registry) Join(roomID domain.RoomID, connID domain.ConnectionID,
	role domain.Role, sink contract.EventSink) (domain.Session, int, error) {
	r.mu.Lock()
	if _, ok := r.active[roomID]; !ok {
		r.mu.Unlock()
		return domain.Session{}, 0, errors.ErrRoomNotFound
	}
	if bound, ok := r.conns[connID]; ok && bound != roomID {
		r.mu.Unlock()
		return domain.Session{}, 0, errors.ErrAlreadyJoined
	}
	state, ok := r.rooms[roomID]
	if !ok {
		state = &roomState{members: make(map[domain.ConnectionID]member)}
		r.rooms[roomID] = state
	}
	r.conns[connID] = roomID
	// Room lock taken before the outer one is released, so a concurrent
	// Deactivate cannot slip between the active check and the insert.
	state.mu.Lock()
	r.mu.Unlock()
	defer state.mu.Unlock()

	session := domain.Session{
		ConnectionID: connID,
		Room:         roomID,
		Role:         role,
		JoinedAt:     time.Now().UTC(),
	}
	if previous, dup := state.members[connID]; dup {
		r.log.Warn(fmt.Sprintf("Replacing session %s in room %s", connID, roomID))
		if previous.sink != sink {
			closeSink(previous.sink)
		}
	}
	state.members[connID] = member{session: session, sink: sink}
	state.emptySince = time.Time{}
	return session, len(state.members), nil
}

// Leave removes the session of a connection if present. Idempotent: an
// unknown or already-removed connection is a no-op reported through ok.
// The returned count reflects the room right after the removal.
func (r *Registry) Leave(connID domain.ConnectionID) (domain.Session, int, bool) {
	r.mu.Lock()
	roomID, ok := r.conns[connID]
	if !ok {
		r.mu.Unlock()
		return domain.Session{}, 0, false
	}
	delete(r.conns, connID)
	state, ok := r.rooms[roomID]
	r.mu.Unlock()
	if !ok {
		return domain.Session{}, 0, false
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	m, ok := state.members[connID]
	if !ok {
		return domain.Session{}, 0, false
	}
	delete(state.members, connID)
	if len(state.members) == 0 {
		state.emptySince = time.Now().UTC()
	}
	return m.session, len(state.members), true
}

func (r *Registry) SessionOf(connID domain.ConnectionID) (domain.Session, bool) {
	r.mu.RLock()
	roomID, ok := r.conns[connID]
	state := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok || state == nil {
		return domain.Session{}, false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	m, ok := state.members[connID]
	return m.session, ok
}

func (r *Registry) OnlineCount(roomID domain.RoomID) int {
	r.mu.RLock()
	state := r.rooms[roomID]
	r.mu.RUnlock()
	if state == nil {
		return 0
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return len(state.members)
}

// SinksOf returns a point-in-time snapshot of the delivery sinks of a room,
// taken under the room lock so the broadcaster never sees a partial view.
func (r *Registry) SinksOf(roomID domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	state := r.rooms[roomID]
	r.mu.RUnlock()
	if state == nil {
		return nil
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	sinks := make([]contract.EventSink, 0, len(state.members))
	for _, m := range state.members {
		sinks = append(sinks, m.sink)
	}
	return sinks
}

// ReapIdle drops presence entries that have been empty longer than ttl.
// The active index is untouched: a reaped room is still joinable, only its
// dead live state is released.
func (r *Registry) ReapIdle(now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	reaped := 0
	for roomID, state := range r.rooms {
		state.mu.Lock()
		idle := len(state.members) == 0 &&
			!state.emptySince.IsZero() &&
			now.Sub(state.emptySince) >= ttl
		state.mu.Unlock()
		if idle {
			delete(r.rooms, roomID)
			reaped++
		}
	}
	return reaped
}

// Gauges reports live totals for the heartbeat worker.
func (r *Registry) Gauges() (rooms, sessions int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms), len(r.conns)
}

// closeSink force-disconnects a sink when it supports it.
func closeSink(sink contract.EventSink) {
	if c, ok := sink.(interface{ Close() }); ok {
		c.Close()
	}
}
