package workers

import (
	"context"
	"log/slog"
	"time"

	"drawboard/contract"
	"drawboard/observability"
)

var _ contract.Worker = (*TelemetryWorker)(nil)

// TelemetryWorker logs one structured stats line per interval: the
// monitor counters plus the process's own memory and CPU usage.
type TelemetryWorker struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	sessions *countProvider
	interval time.Duration
}

// countProvider decouples telemetry from the concrete registries.
type countProvider struct {
	Sessions func() int
	Rooms    func() int
}

func NewTelemetryWorker(
	log *slog.Logger,
	monitor *observability.Monitor,
	sessions func() int,
	rooms func() int,
	interval time.Duration,
) *TelemetryWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &TelemetryWorker{
		log:      log,
		monitor:  monitor,
		sessions: &countProvider{Sessions: sessions, Rooms: rooms},
		interval: interval,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *TelemetryWorker) report() {
	stats := w.monitor.Snapshot()

	args := []any{
		"sessions", w.sessions.Sessions(),
		"rooms", w.sessions.Rooms(),
		"ops_appended", stats.OpsAppended,
		"ops_rejected", stats.OpsRejected,
		"undos", stats.Undos,
		"redos", stats.Redos,
		"clears", stats.Clears,
		"broadcasts", stats.Broadcasts,
		"dropped_frames", stats.DroppedFrames,
		"cursors_muted", stats.CursorsMuted,
	}

	if rss, cpu, err := observability.SelfStats(); err == nil {
		args = append(args, "rss_mb", rss/1024/1024, "cpu_percent", cpu)
	}

	w.log.Info("Telemetry", args...)
}
