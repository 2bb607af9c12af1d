package workers

import (
	"context"
	"log/slog"

	"support-chat/contract"
	"support-chat/domain"
)

// DiskSinkWorker drains the persistence queue into the message store.
// Storage failures are logged and swallowed: a message that was delivered
// live stays delivered even when it never reaches disk.
type DiskSinkWorker struct {
	queue      <-chan domain.Message
	repository contract.MessageAppender
	log        *slog.Logger
}

func NewDiskSinkWorker(log *slog.Logger, queue <-chan domain.Message,
	repository contract.MessageAppender) *DiskSinkWorker {
	return &DiskSinkWorker{queue: queue, repository: repository, log: log}
}

func (w *DiskSinkWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case message, ok := <-w.queue:
			if !ok {
				return nil
			}
			if err := w.repository.StoreMessage(message); err != nil {
				w.log.Error("Message persistence failed",
					"message_id", message.ID,
					"room_id", message.Room,
					"error", err)
			}
		}
	}
}
