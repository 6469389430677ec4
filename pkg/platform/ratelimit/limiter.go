// Package ratelimit throttles callers with an in-memory sliding window.
package ratelimit

import (
	"sync"
	"time"
)

// Result describes one admission decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is set when the request was refused.
	RetryAfter time.Duration
}

// Limiter admits at most limit requests per key within any window. It is
// process-local; each replica enforces its own budget.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string][]time.Time
	sweeps  int
}

// sweepEvery bounds how many calls pass between scans for idle keys.
const sweepEvery = 1024

func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: make(map[string][]time.Time),
	}
}

// Allow records a request for key if the window has room.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweeps++
	if l.sweeps >= sweepEvery {
		l.sweeps = 0
		l.sweepLocked(now)
	}

	stamps := trim(l.windows[key], now.Add(-l.window))
	if len(stamps) >= l.limit {
		l.windows[key] = stamps
		reset := stamps[0].Add(l.window)
		return Result{
			Allowed:    false,
			Limit:      l.limit,
			ResetAt:    reset,
			RetryAfter: reset.Sub(now),
		}
	}

	stamps = append(stamps, now)
	l.windows[key] = stamps
	return Result{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - len(stamps),
		ResetAt:   stamps[0].Add(l.window),
	}
}

// trim drops timestamps at or before cutoff. Timestamps are in call order.
func trim(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	return stamps[i:]
}

func (l *Limiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	for key, stamps := range l.windows {
		if len(trim(stamps, cutoff)) == 0 {
			delete(l.windows, key)
		}
	}
}
