// Package worker runs the workflow's background loops: the liveness ticker,
// snapshot checkpoints and the automatic distribution sweep.
package worker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"willgate/internal/liveness"
)

// Workflow is the part of the workflow service the loops drive.
type Workflow interface {
	liveness.Target
	Checkpoint(ctx context.Context) int
	SweepDistributions(ctx context.Context) int
}

// Config sets loop intervals. A zero interval disables that loop; the
// liveness ticker is always on.
type Config struct {
	TickInterval       time.Duration
	CheckpointInterval time.Duration
	SweepInterval      time.Duration
}

type Runner struct {
	workflow Workflow
	cfg      Config
	logger   *slog.Logger
}

type Option func(*Runner)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

func New(workflow Workflow, cfg Config, opts ...Option) *Runner {
	r := &Runner{workflow: workflow, cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	if r.cfg.TickInterval <= 0 {
		r.cfg.TickInterval = time.Second
	}
	return r
}

// Run blocks until ctx is cancelled. Pending countdown progress is
// checkpointed once more on the way out.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return liveness.NewTicker(r.cfg.TickInterval, r.workflow, r.logger).Run(ctx)
	})
	if r.cfg.CheckpointInterval > 0 {
		g.Go(func() error {
			r.every(ctx, r.cfg.CheckpointInterval, r.checkpoint)
			r.checkpoint(context.WithoutCancel(ctx))
			return nil
		})
	}
	if r.cfg.SweepInterval > 0 {
		g.Go(func() error {
			r.every(ctx, r.cfg.SweepInterval, r.sweep)
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

func (r *Runner) checkpoint(ctx context.Context) {
	if n := r.workflow.Checkpoint(ctx); n > 0 {
		r.logger.DebugContext(ctx, "checkpointed sessions", "count", n)
	}
}

func (r *Runner) sweep(ctx context.Context) {
	if n := r.workflow.SweepDistributions(ctx); n > 0 {
		r.logger.InfoContext(ctx, "automatic distributions executed", "count", n)
	}
}
