package runtime

import (
	"context"
	"log/slog"
	"time"

	"support-chat/contract"
	"support-chat/domain/event"
)

// Broadcaster delivers one event to every current session of a room.
//
// Delivery is best-effort: a session that disconnects during fan-out simply
// does not receive the event. Recipients are buffered channel sinks, so one
// slow consumer cannot stall the others; sinkTimeout bounds the worst case.
//
// Sequential Emit calls for the same room reach each recipient in emission
// order because delivery into the per-connection buffers is synchronous.
type Broadcaster struct {
	registry    contract.IRegistry
	log         *slog.Logger
	sinkTimeout time.Duration
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry, sinkTimeout time.Duration) *Broadcaster {
	return &Broadcaster{registry: registry, log: log, sinkTimeout: sinkTimeout}
}

func (b *Broadcaster) Emit(ctx context.Context, e event.DomainEvent) {
	sinks := b.registry.SinksOf(e.RoomID())
	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, b.sinkTimeout)
		if err := sink.Consume(sinkCtx, e); err != nil {
			b.log.Warn("Recipient skipped during fan-out",
				"room_id", e.RoomID(),
				"error", err)
		}
		cancel()
	}
}
