package liveness

import (
	"context"
	"log/slog"
	"time"
)

// Target receives one call per interval.
type Target interface {
	TickAll(ctx context.Context)
}

// Ticker drives Target at a fixed interval until its context ends.
type Ticker struct {
	interval time.Duration
	target   Target
	logger   *slog.Logger
}

func NewTicker(interval time.Duration, target Target, logger *slog.Logger) *Ticker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ticker{interval: interval, target: target, logger: logger}
}

// Run blocks until ctx is cancelled and returns nil on a clean stop.
func (t *Ticker) Run(ctx context.Context) error {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	t.logger.InfoContext(ctx, "liveness ticker started", "interval", t.interval)
	for {
		select {
		case <-ctx.Done():
			t.logger.InfoContext(ctx, "liveness ticker stopped")
			return nil
		case <-tk.C:
			t.target.TickAll(ctx)
		}
	}
}
