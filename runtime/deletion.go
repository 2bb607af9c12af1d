package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"support-chat/contract"
	"support-chat/domain"
	"support-chat/domain/event"
)

// DeletionCoordinator drives the ordered teardown of a room:
//
//	Active -> NotifyingDeletion -> Draining -> TornDown
//
// Connected clients are notified before any durable data disappears, get a
// bounded grace period to disconnect on their own, and whoever is left is
// force-disconnected. Only after Delete returns may the caller remove the
// durable records.
type DeletionCoordinator struct {
	mu          sync.Mutex
	inFlight    map[domain.RoomID]struct{}
	registry    contract.IRegistry
	broadcaster contract.IBroadcaster
	log         *slog.Logger
	drainPeriod time.Duration
}

func NewDeletionCoordinator(log *slog.Logger, registry contract.IRegistry,
	broadcaster contract.IBroadcaster, drainPeriod time.Duration) *DeletionCoordinator {
	return &DeletionCoordinator{
		inFlight:    make(map[domain.RoomID]struct{}),
		registry:    registry,
		broadcaster: broadcaster,
		log:         log,
		drainPeriod: drainPeriod,
	}
}

// Delete tears the live state of a room down. Idempotent: a concurrent or
// repeated delete of the same room is a no-op, never a second teardown.
func (c *DeletionCoordinator) Delete(ctx context.Context, roomID domain.RoomID) {
	c.mu.Lock()
	if _, dup := c.inFlight[roomID]; dup {
		c.mu.Unlock()
		c.log.Debug("Redundant delete ignored", "room_id", roomID)
		return
	}
	c.inFlight[roomID] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, roomID)
		c.mu.Unlock()
	}()

	if !c.registry.IsActive(roomID) {
		return
	}

	// NotifyingDeletion: clients must hear about the deletion while the
	// room still exists everywhere.
	c.broadcaster.Emit(ctx, event.RoomDeleted{Room: roomID})

	// Draining: give the notification time to reach clients so they can
	// disconnect voluntarily. Pointless when nobody is connected.
	if c.registry.OnlineCount(roomID) > 0 {
		timer := time.NewTimer(c.drainPeriod)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	// TornDown: whoever is still attached gets force-disconnected, then
	// the room disappears from the registry.
	remaining := c.registry.Deactivate(roomID)
	for _, sink := range remaining {
		if closer, ok := sink.(interface{ Close() }); ok {
			closer.Close()
		}
	}
	c.log.Info("Room torn down", "room_id", roomID, "forced", len(remaining))
}
