package transport

import (
	"sync"
	"time"

	"github.com/ezex-io/spark/kernel"
)

// decayWindow is the interval within which consecutive WouldBlock
// observations are considered part of the same streak (spec §4.4).
const decayWindow = 200 * time.Millisecond

const maxRetryAfter = 100 * time.Millisecond

// WouldBlockTracker turns a stream of "write would block" observations
// into the exact ReadyState escalation the spec's poll_ready rules
// describe: the first couple are plain backpressure, a sustained streak
// within the decay window escalates to an explicit retry-after advice.
type WouldBlockTracker struct {
	mu       sync.Mutex
	clock    kernel.Clock
	streak   int
	lastSeen kernel.MonotonicTimePoint
	hasSeen  bool
}

// NewWouldBlockTracker builds a tracker using clock to evaluate the decay
// window; pass kernel.NewSystemClock() in production, a
// kernel.DeterministicClock in tests.
func NewWouldBlockTracker(clock kernel.Clock) *WouldBlockTracker {
	return &WouldBlockTracker{clock: clock}
}

// Observe records one WouldBlock occurrence and returns the ReadyState
// the caller's poll_ready should report:
//
//	streak 1-2 within the decay window: Busy(Downstream)
//	streak >=3 within the decay window: RetryAfter(5ms * (streak-2), capped at 100ms)
//
// A gap longer than the decay window resets the streak to 1.
func (t *WouldBlockTracker) Observe() kernel.ReadyState {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()

	if !t.hasSeen || now.Sub(t.lastSeen) > decayWindow {
		t.streak = 1
	} else {
		t.streak++
	}

	t.hasSeen = true
	t.lastSeen = now

	if t.streak < 3 {
		return kernel.Busy(kernel.BusyDownstream())
	}

	wait := time.Duration(t.streak-2) * 5 * time.Millisecond
	if wait > maxRetryAfter {
		wait = maxRetryAfter
	}

	return kernel.RetryAfterState(kernel.RetryAdvice{After: wait, Reason: "sustained WouldBlock streak"})
}

// Reset clears the streak, e.g. after a successful write.
func (t *WouldBlockTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.streak = 0
	t.hasSeen = false
}

// WriterLockBusy is the ReadyState reported when a write attempt could
// not acquire the channel's internal write lock (spec §4.4 "Write lock
// contention").
func WriterLockBusy() kernel.ReadyState {
	return kernel.Busy(kernel.BusyCustom("writer_held"))
}
