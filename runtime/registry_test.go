package runtime

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"support-chat/domain"
	"support-chat/domain/event"
	"support-chat/errors"
)

type Sink struct{}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

// closableSink records forced disconnections.
type closableSink struct {
	closed bool
}

func (s *closableSink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func (s *closableSink) Close() { s.closed = true }

func TestRegistry_Join_Inactive_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	// Given no room was ever activated
	// When a connection tries to join
	_, _, err := registry.Join("abc12", "conn-1", domain.RoleUser, Sink{})

	// Then the join is refused and nothing was registered
	req.ErrorIs(err, errors.ErrRoomNotFound)
	req.Equal(0, registry.OnlineCount("abc12"))
}

func TestRegistry_Join_One_Room_Multiple_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	registry.Activate("abc12")

	// When two connections join the same room
	_, count1, err := registry.Join("abc12", "conn-1", domain.RoleUser, Sink{})
	req.NoError(err)
	_, count2, err := registry.Join("abc12", "conn-2", domain.RoleAdmin, Sink{})
	req.NoError(err)

	// Then each join reports the count at the instant of the mutation
	req.Equal(1, count1)
	req.Equal(2, count2)
	req.Equal(2, registry.OnlineCount("abc12"))
	req.Len(registry.SinksOf("abc12"), 2)
}

func TestRegistry_Join_Replaces_Duplicate_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	registry.Activate("abc12")
	first := &closableSink{}

	// Given a connection already in the room
	_, _, err := registry.Join("abc12", "conn-1", domain.RoleUser, first)
	req.NoError(err)

	// When the same connection joins again
	_, count, err := registry.Join("abc12", "conn-1", domain.RoleUser, &closableSink{})
	req.NoError(err)

	// Then the old session is replaced, not added, and its sink was closed
	req.Equal(1, count)
	req.True(first.closed)
}

func TestRegistry_Join_Refuses_Second_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	registry.Activate("abc12")
	registry.Activate("xyz99")

	// Given a connection already in a room
	_, _, err := registry.Join("abc12", "conn-1", domain.RoleUser, Sink{})
	req.NoError(err)

	// When the same connection asks for a different room
	_, _, err = registry.Join("xyz99", "conn-1", domain.RoleUser, Sink{})

	// Then the join is refused and neither room's count moved
	req.ErrorIs(err, errors.ErrAlreadyJoined)
	req.Equal(1, registry.OnlineCount("abc12"))
	req.Equal(0, registry.OnlineCount("xyz99"))

	// And leaving fully releases the one session it does have
	session, count, ok := registry.Leave("conn-1")
	req.True(ok)
	req.Equal(domain.RoomID("abc12"), session.Room)
	req.Equal(0, count)
	req.Equal(0, registry.OnlineCount("abc12"))
}

func TestRegistry_Rejoin_With_Same_Sink_Keeps_It_Open(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	registry.Activate("abc12")
	sink := &closableSink{}

	// Given a connection in the room
	_, _, err := registry.Join("abc12", "conn-1", domain.RoleUser, sink)
	req.NoError(err)

	// When it re-sends the join on the same delivery sink
	_, count, err := registry.Join("abc12", "conn-1", domain.RoleUser, sink)
	req.NoError(err)

	// Then the session is replaced without killing its own sink
	req.Equal(1, count)
	req.False(sink.closed)
}

func TestRegistry_Join_Serialized_Against_Deactivate(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	// A joiner racing the teardown either fails the active check or lands
	// before the teardown collects the sinks; it can never end up in a
	// detached room state.
	for i := 0; i < 200; i++ {
		registry.Activate("abc12")
		sink := &closableSink{}
		joined := make(chan error, 1)
		go func() {
			_, _, err := registry.Join("abc12", "conn-1", domain.RoleUser, sink)
			joined <- err
		}()
		sinks := registry.Deactivate("abc12")
		err := <-joined

		if err == nil {
			req.Len(sinks, 1)
			req.Same(sink, sinks[0])
		} else {
			req.ErrorIs(err, errors.ErrRoomNotFound)
			req.Empty(sinks)
		}
		req.Equal(0, registry.OnlineCount("abc12"))
		_, ok := registry.SessionOf("conn-1")
		req.False(ok)
	}
}

func TestRegistry_Leave_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	registry.Activate("abc12")
	_, _, err := registry.Join("abc12", "conn-1", domain.RoleUser, Sink{})
	req.NoError(err)

	// When the connection leaves twice
	session, count, ok := registry.Leave("conn-1")
	req.True(ok)
	req.Equal(domain.RoomID("abc12"), session.Room)
	req.Equal(0, count)

	// Then the second leave is a reported no-op
	_, _, ok = registry.Leave("conn-1")
	req.False(ok)
}

func TestRegistry_Leave_Unknown_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	_, _, ok := registry.Leave("ghost")
	req.False(ok)
}

func TestRegistry_SessionOf(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	registry.Activate("abc12")
	_, _, err := registry.Join("abc12", "conn-1", domain.RoleAdmin, Sink{})
	req.NoError(err)

	session, ok := registry.SessionOf("conn-1")
	req.True(ok)
	req.Equal(domain.RoleAdmin, session.Role)
	req.Equal(domain.RoomID("abc12"), session.Room)

	_, ok = registry.SessionOf("ghost")
	req.False(ok)
}

func TestRegistry_Deactivate_Returns_Remaining_Sinks(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	registry.Activate("abc12")
	_, _, err := registry.Join("abc12", "conn-1", domain.RoleUser, &closableSink{})
	req.NoError(err)
	_, _, err = registry.Join("abc12", "conn-2", domain.RoleAdmin, &closableSink{})
	req.NoError(err)

	// When the room is deactivated
	sinks := registry.Deactivate("abc12")

	// Then the attached sinks are handed back and all state is gone
	req.Len(sinks, 2)
	req.False(registry.IsActive("abc12"))
	req.Equal(0, registry.OnlineCount("abc12"))
	_, ok := registry.SessionOf("conn-1")
	req.False(ok)

	// And a second deactivation is a no-op
	req.Nil(registry.Deactivate("abc12"))
}

func TestRegistry_ReapIdle_Keeps_Room_Joinable(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	registry.Activate("abc12")
	_, _, err := registry.Join("abc12", "conn-1", domain.RoleUser, Sink{})
	req.NoError(err)
	_, _, ok := registry.Leave("conn-1")
	req.True(ok)

	// When the empty presence outlives the TTL
	reaped := registry.ReapIdle(time.Now().UTC().Add(time.Hour), 30*time.Minute)

	// Then the presence entry is released but the room stays active
	req.Equal(1, reaped)
	req.True(registry.IsActive("abc12"))

	// And joining again still works
	_, count, err := registry.Join("abc12", "conn-2", domain.RoleUser, Sink{})
	req.NoError(err)
	req.Equal(1, count)
}

func TestRegistry_ReapIdle_Spares_Occupied_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	registry.Activate("abc12")
	_, _, err := registry.Join("abc12", "conn-1", domain.RoleUser, Sink{})
	req.NoError(err)

	reaped := registry.ReapIdle(time.Now().UTC().Add(time.Hour), 30*time.Minute)
	req.Equal(0, reaped)
	req.Equal(1, registry.OnlineCount("abc12"))
}
