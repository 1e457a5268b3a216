package testutil

import (
	"sync"
	"time"
)

// ManualTimers is a deterministic replacement for time.AfterFunc. Timers
// never fire on their own; tests fire them explicitly.
type ManualTimers struct {
	mu     sync.Mutex
	timers []*ManualTimer
}

// ManualTimer is one scheduled callback.
type ManualTimer struct {
	owner   *ManualTimers
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

// AfterFunc schedules f. The delay is recorded but never waited on.
func (m *ManualTimers) AfterFunc(d time.Duration, f func()) *ManualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &ManualTimer{owner: m, delay: d, fn: f}
	m.timers = append(m.timers, t)
	return t
}

// Stop cancels the timer. It reports whether the call prevented f from
// running, matching time.Timer.Stop.
func (t *ManualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Delay returns the delay the timer was scheduled with.
func (t *ManualTimer) Delay() time.Duration { return t.delay }

// Pending returns the number of timers neither stopped nor fired.
func (m *ManualTimers) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Scheduled returns every timer created so far, including stopped ones.
func (m *ManualTimers) Scheduled() []*ManualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ManualTimer, len(m.timers))
	copy(out, m.timers)
	return out
}

// FireNext runs the oldest pending timer on the calling goroutine and
// reports whether one was pending.
func (m *ManualTimers) FireNext() bool {
	m.mu.Lock()
	var next *ManualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			next = t
			break
		}
	}
	if next == nil {
		m.mu.Unlock()
		return false
	}
	next.fired = true
	m.mu.Unlock()

	next.fn()
	return true
}

// Fire runs t even if it was stopped, simulating a timer callback that
// raced with Stop.
func (t *ManualTimer) Fire() {
	t.owner.mu.Lock()
	t.fired = true
	t.owner.mu.Unlock()
	t.fn()
}
