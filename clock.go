package rx

import (
	"sync"
	"time"
)

// Clock is the monotonic time source consulted by time-based operators and
// schedulers (§4.8, §9 "Time source"). The default Clock samples
// time.Now()/time.NewTimer, which on every supported platform returns a
// monotonic reading, so time-based operators stay correct across wall-clock
// adjustments. Tests substitute a VirtualClock for deterministic control
// over debounce/sample/timeout without real sleeps.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	NewTimer(d time.Duration) ClockTimer
}

// ClockTimer is the subset of time.Timer a Clock needs to expose so a
// VirtualClock can fake it.
type ClockTimer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

type realClock struct{}

// RealClock is the default Clock, backed by the standard library's
// monotonic timers.
var RealClock Clock = realClock{}

func (realClock) Now() time.Time                      { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (realClock) NewTimer(d time.Duration) ClockTimer  { return &realTimer{t: time.NewTimer(d)} }

type realTimer struct{ t *time.Timer }

func (r *realTimer) C() <-chan time.Time        { return r.t.C }
func (r *realTimer) Stop() bool                 { return r.t.Stop() }
func (r *realTimer) Reset(d time.Duration) bool { return r.t.Reset(d) }

// VirtualClock is a manually-advanced Clock used by tests to make
// debounce/sample/window/timeout deterministic. Advance() fires any pending
// timers/After channels whose deadline has passed.
type VirtualClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*virtualWaiter
}

type virtualWaiter struct {
	deadline time.Time
	ch       chan time.Time
	fired    bool
	period   time.Duration // non-zero for timers that get Reset, informational only
}

// NewVirtualClock creates a VirtualClock starting at the given instant.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *VirtualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &virtualWaiter{deadline: c.now.Add(d), ch: make(chan time.Time, 1)}
	c.waiters = append(c.waiters, w)
	return w.ch
}

func (c *VirtualClock) NewTimer(d time.Duration) ClockTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &virtualWaiter{deadline: c.now.Add(d), ch: make(chan time.Time, 1)}
	c.waiters = append(c.waiters, w)
	return &virtualTimer{clock: c, w: w}
}

// Advance moves the clock forward by d, firing any waiter whose deadline has
// now passed (in the order the waiters were registered).
func (c *VirtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	pending := make([]*virtualWaiter, 0, len(c.waiters))
	for _, w := range c.waiters {
		if !w.fired && !now.Before(w.deadline) {
			w.fired = true
			pending = append(pending, w)
		}
	}
	c.mu.Unlock()
	for _, w := range pending {
		select {
		case w.ch <- now:
		default:
		}
	}
}

type virtualTimer struct {
	clock *VirtualClock
	w     *virtualWaiter
}

func (t *virtualTimer) C() <-chan time.Time { return t.w.ch }

func (t *virtualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	fired := t.w.fired
	t.w.fired = true
	return !fired
}

func (t *virtualTimer) Reset(d time.Duration) bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.w.fired
	t.w.fired = false
	t.w.period = d
	t.w.deadline = t.clock.now.Add(d)
	t.w.ch = make(chan time.Time, 1)
	return active
}
