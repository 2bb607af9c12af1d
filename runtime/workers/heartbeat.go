package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// LiveGauges exposes the registry totals the heartbeat reports.
type LiveGauges interface {
	Gauges() (rooms, sessions int)
}

// HeartbeatWorker periodically logs self health metrics (RSS, CPU, OS
// status) together with the live room/session gauges.
type HeartbeatWorker struct {
	log      *slog.Logger
	gauges   LiveGauges
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, gauges LiveGauges, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, gauges: gauges, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			rooms, sessions := w.gauges.Gauges()
			w.log.Info("Heartbeat",
				"pid_status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"goroutines", runtime.NumGoroutine(),
				"live_rooms", rooms,
				"live_sessions", sessions)
		}
	}
}

// getSelfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
