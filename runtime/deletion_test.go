package runtime

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"support-chat/domain"
	"support-chat/domain/event"
)

func TestDeletionCoordinator_Notifies_Before_Teardown(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	registry := NewRegistry(log)
	broadcaster := NewBroadcaster(log, registry, time.Second)
	coordinator := NewDeletionCoordinator(log, registry, broadcaster, 10*time.Millisecond)
	registry.Activate("abc12")

	sink := &recordingSink{}
	_, _, err := registry.Join("abc12", "conn-1", domain.RoleUser, sink)
	req.NoError(err)

	// When the room is deleted
	coordinator.Delete(context.Background(), "abc12")

	// Then the session heard about it while it was still registered
	req.Len(sink.events, 1)
	_, ok := sink.events[0].(event.RoomDeleted)
	req.True(ok)

	// And the room is gone from the live layer
	req.False(registry.IsActive("abc12"))
	req.Equal(0, registry.OnlineCount("abc12"))
}

func TestDeletionCoordinator_Forces_Remaining_Disconnections(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	registry := NewRegistry(log)
	broadcaster := NewBroadcaster(log, registry, time.Second)
	coordinator := NewDeletionCoordinator(log, registry, broadcaster, 5*time.Millisecond)
	registry.Activate("abc12")

	// Given a session that never disconnects on its own
	stubborn := &closableSink{}
	_, _, err := registry.Join("abc12", "conn-1", domain.RoleUser, stubborn)
	req.NoError(err)

	coordinator.Delete(context.Background(), "abc12")

	// Then the grace period elapsed and the sink was force-closed
	req.True(stubborn.closed)
}

func TestDeletionCoordinator_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	registry := NewRegistry(log)
	broadcaster := NewBroadcaster(log, registry, time.Second)
	coordinator := NewDeletionCoordinator(log, registry, broadcaster, 5*time.Millisecond)
	registry.Activate("abc12")

	sink := &recordingSink{}
	_, _, err := registry.Join("abc12", "conn-1", domain.RoleUser, sink)
	req.NoError(err)

	// When the room is deleted twice, concurrently and then again after
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			coordinator.Delete(context.Background(), "abc12")
		}()
	}
	wg.Wait()
	coordinator.Delete(context.Background(), "abc12")

	// Then the notification went out exactly once
	req.Len(sink.events, 1)
}

func TestDeletionCoordinator_Skips_Drain_For_Empty_Room(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	registry := NewRegistry(log)
	broadcaster := NewBroadcaster(log, registry, time.Second)
	// A long drain period would make this test slow if it were not skipped
	coordinator := NewDeletionCoordinator(log, registry, broadcaster, 10*time.Second)
	registry.Activate("abc12")

	start := time.Now()
	coordinator.Delete(context.Background(), "abc12")

	req.Less(time.Since(start), time.Second)
	req.False(registry.IsActive("abc12"))
}
