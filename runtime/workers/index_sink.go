package workers

import (
	"context"
	"log/slog"

	"support-chat/contract"
	"support-chat/domain"
)

// IndexSinkWorker feeds the search index asynchronously. Same stance as the
// disk sink: indexing failures never reach the live path.
type IndexSinkWorker struct {
	queue   <-chan domain.Message
	indexer contract.MessageIndexer
	log     *slog.Logger
}

func NewIndexSinkWorker(log *slog.Logger, queue <-chan domain.Message,
	indexer contract.MessageIndexer) *IndexSinkWorker {
	return &IndexSinkWorker{queue: queue, indexer: indexer, log: log}
}

func (w *IndexSinkWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case message, ok := <-w.queue:
			if !ok {
				return nil
			}
			if err := w.indexer.Index(message); err != nil {
				w.log.Error("Message indexing failed",
					"message_id", message.ID,
					"room_id", message.Room,
					"error", err)
			}
		}
	}
}
