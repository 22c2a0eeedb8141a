package rx

// Scheduler is a strategy for dispatching work units (§3, §4.12). Run
// schedules fn according to the scheduler's policy and returns a Disposable
// that, if disposed before fn starts, suppresses it; disposing after fn has
// started has no effect on that particular unit (scheduled work is not
// preemptible mid-unit, only future units are cancellable — §5
// "suspension points").
type Scheduler interface {
	Run(fn func()) Disposable
}

// RunRecursive implements the recursive scheduling shape described in
// §4.12 ("a recursive variant run((self) → void)") on top of any
// Scheduler's Run: the first step and every rescheduled one go through
// s.Run, and fn is invoked with a self callback that reschedules the same
// step. interval and repeat are built on this so that
// cancellation is observed at every reschedule point regardless of which
// concrete Scheduler drives them (§4.3, §5).
func RunRecursive(s Scheduler, fn func(self func())) Disposable {
	d := NewBooleanDisposable(nil)
	var step func()
	self := func() {
		if d.IsDisposed() {
			return
		}
		s.Run(step)
	}
	step = func() {
		if d.IsDisposed() {
			return
		}
		fn(self)
	}
	s.Run(step)
	return d
}

type immediateScheduler struct{}

// Immediate invokes fn synchronously on the calling goroutine (§4.12).
var Immediate Scheduler = immediateScheduler{}

func (immediateScheduler) Run(fn func()) Disposable {
	d := NewBooleanDisposable(nil)
	if !d.IsDisposed() {
		fn()
	}
	return d
}
