package worker

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingWorkflow struct {
	ticks       atomic.Int32
	checkpoints atomic.Int32
	sweeps      atomic.Int32
	// finalCtxLive records whether the last checkpoint saw a live context.
	finalCtxLive atomic.Bool
}

func (w *countingWorkflow) TickAll(context.Context) { w.ticks.Add(1) }

func (w *countingWorkflow) Checkpoint(ctx context.Context) int {
	w.checkpoints.Add(1)
	w.finalCtxLive.Store(ctx.Err() == nil)
	return 1
}

func (w *countingWorkflow) SweepDistributions(context.Context) int {
	w.sweeps.Add(1)
	return 0
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunnerDrivesAllLoops(t *testing.T) {
	wf := &countingWorkflow{}
	r := New(wf, Config{
		TickInterval:       2 * time.Millisecond,
		CheckpointInterval: 2 * time.Millisecond,
		SweepInterval:      2 * time.Millisecond,
	}, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		return wf.ticks.Load() > 2 && wf.checkpoints.Load() > 2 && wf.sweeps.Load() > 2
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
	assert.True(t, wf.finalCtxLive.Load(), "final checkpoint should run with a live context")
}

func TestRunnerSkipsDisabledLoops(t *testing.T) {
	wf := &countingWorkflow{}
	r := New(wf, Config{TickInterval: time.Millisecond}, WithLogger(quietLogger()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Run(ctx))

	assert.Positive(t, wf.ticks.Load())
	assert.Zero(t, wf.checkpoints.Load())
	assert.Zero(t, wf.sweeps.Load())
}
