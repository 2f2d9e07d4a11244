package store

import (
	"sync"
	"time"
)

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The default clock delegates to time.AfterFunc;
// tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns the wall-clock implementation.
func SystemClock() Clock {
	return realClock{}
}

// Debouncer runs fn once delay has elapsed since the most recent Arm. Each Arm
// cancels the pending run and schedules a new one under a single lock, so a
// timer that already fired for a superseded window is ignored.
type Debouncer struct {
	clock Clock
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// NewDebouncer constructs a Debouncer. A nil clock means SystemClock.
func NewDebouncer(clock Clock, delay time.Duration, fn func()) *Debouncer {
	if clock == nil {
		clock = SystemClock()
	}
	return &Debouncer{clock: clock, delay: delay, fn: fn}
}

// Arm cancels any pending run and starts a new quiescence window.
func (d *Debouncer) Arm() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Cancel drops the pending run, reporting whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.timer != nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return pending
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	if d.fn != nil {
		d.fn()
	}
}
