// Package throttle implements a trailing-edge rate limiter.
//
// The limiter holds no timers of its own. Callers schedule a wake-up for the
// returned sequence number (in the TUI: a tea.Tick message) and ask Fire whether
// that wake-up is still current. Stop invalidates wake-ups already in flight.
package throttle

import (
	"sync"
	"time"
)

// DefaultWait is the propagation window for editor field changes.
const DefaultWait = 200 * time.Millisecond

type Limiter struct {
	mu      sync.Mutex
	wait    time.Duration
	seq     uint64
	pending bool
	stopped bool
}

func New(wait time.Duration) *Limiter {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Limiter{wait: wait}
}

func (l *Limiter) Wait() time.Duration { return l.wait }

// Touch records a change and restarts the quiet period. It returns the sequence
// the caller must pass to Fire after Wait; wake-ups scheduled for earlier
// changes become stale, so only the last change of a burst propagates.
func (l *Limiter) Touch() (seq uint64, schedule bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return l.seq, false
	}
	l.seq++
	l.pending = true
	return l.seq, true
}

// Fire reports whether the wake-up for seq should propagate. Only the wake-up
// of the newest change fires, and at most once.
func (l *Limiter) Fire(seq uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped || !l.pending || seq != l.seq {
		return false
	}
	l.pending = false
	return true
}

// Pending reports whether a change is waiting for its quiet period to end.
func (l *Limiter) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Stop cancels the pending wake-up; later Touch and Fire calls are no-ops.
func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	l.pending = false
	l.seq++
}
