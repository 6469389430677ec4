// Package liveness implements the dead-man's-switch countdown an account
// holder must keep acknowledging.
package liveness

import "sync"

// DefaultWindow is the countdown length in ticks.
const DefaultWindow = 30

// State is a point-in-time view of a Timer.
type State struct {
	Remaining int  `json:"remaining"`
	Running   bool `json:"running"`
	Window    int  `json:"window"`
}

// Timer counts down once per Tick while running. Reaching zero stops it and
// reports expiry exactly once; only Restart re-arms it.
type Timer struct {
	mu        sync.Mutex
	window    int
	remaining int
	running   bool
}

// NewTimer returns a running timer. Non-positive windows use DefaultWindow.
func NewTimer(window int) *Timer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Timer{window: window, remaining: window, running: true}
}

// Tick decrements the countdown and returns true on the tick that expires it.
func (t *Timer) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		t.running = false
		return true
	}
	return false
}

// Acknowledge resets the countdown to the full window. It reports false and
// does nothing once the timer has expired.
func (t *Timer) Acknowledge() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return false
	}
	t.remaining = t.window
	return true
}

// Restart re-arms an expired or running timer with a full window.
func (t *Timer) Restart() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remaining = t.window
	t.running = true
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{Remaining: t.remaining, Running: t.running, Window: t.window}
}

// Restore loads persisted countdown state, clamped to [0, window].
func (t *Timer) Restore(remaining int, running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remaining = min(max(remaining, 0), t.window)
	t.running = running
}
