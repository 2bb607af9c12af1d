package workers

import (
	"context"
	"log/slog"
	"time"
)

// IdleReaper drops presence entries of rooms that stayed empty longer than
// the configured TTL. Reaped rooms remain joinable; only dead live state is
// released.
type IdleReaper interface {
	ReapIdle(now time.Time, ttl time.Duration) int
}

type ReaperWorker struct {
	reaper   IdleReaper
	ttl      time.Duration
	interval time.Duration
	log      *slog.Logger
}

func NewReaperWorker(log *slog.Logger, reaper IdleReaper, ttl, interval time.Duration) *ReaperWorker {
	return &ReaperWorker{reaper: reaper, ttl: ttl, interval: interval, log: log}
}

func (w *ReaperWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case <-ticker.C:
			if reaped := w.reaper.ReapIdle(time.Now().UTC(), w.ttl); reaped > 0 {
				w.log.Info("Idle presence entries reaped", "count", reaped)
			}
		}
	}
}
