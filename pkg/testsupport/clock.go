package testsupport

import (
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-loform/pkg/store"
)

// ManualClock is a store.Clock whose timers only fire when Advance moves the
// clock past their deadline.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

var _ store.Clock = (*ManualClock)(nil)

type manualTimer struct {
	clock    *ManualClock
	deadline time.Duration
	seq      int
	fn       func()
	stopped  bool
}

// NewManualClock returns a clock positioned at zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// AfterFunc implements store.Clock.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) store.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	timer := &manualTimer{clock: c, deadline: c.now + d, seq: c.seq, fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

// Advance moves the clock forward and runs every timer that became due, in
// deadline order, outside the clock lock.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due, rest []*manualTimer
	for _, timer := range c.timers {
		switch {
		case timer.stopped:
		case timer.deadline <= c.now:
			due = append(due, timer)
		default:
			rest = append(rest, timer)
		}
	}
	c.timers = rest
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline == due[j].deadline {
			return due[i].seq < due[j].seq
		}
		return due[i].deadline < due[j].deadline
	})
	for _, timer := range due {
		timer.fn()
	}
}

// Now returns the elapsed manual time.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Pending returns the number of timers that have neither fired nor stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, timer := range c.timers {
		if !timer.stopped {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	for _, pending := range t.clock.timers {
		if pending == t {
			t.stopped = true
			return true
		}
	}
	return false
}
