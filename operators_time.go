package rx

import (
	"sync"
	"time"
)

// Debounce forwards a value only after the source has stayed silent for
// duration; every new value restarts the wait. The last pending value (if
// any) is flushed immediately on Complete (§4.8).
func (o Observable) Debounce(duration time.Duration, scheduler Scheduler, clock Clock) Observable {
	if clock == nil {
		clock = RealClock
	}
	return Create(func(downstream Observer) Disposable {
		var mu sync.Mutex
		var pending any
		hasPending := false
		gen := 0
		timerDisp := NewAssignableDisposable()

		fire := func(myGen int) {
			mu.Lock()
			if gen != myGen || !hasPending {
				mu.Unlock()
				return
			}
			v := pending
			hasPending = false
			mu.Unlock()
			downstream.next(v)
		}
		schedule := func() {
			mu.Lock()
			gen++
			myGen := gen
			mu.Unlock()
			timerDisp.Set(scheduler.Run(func() {
				<-clock.After(duration)
				fire(myGen)
			}))
		}

		upstream := o.subscribe(Protect(Observer{
			Next: func(v any) {
				mu.Lock()
				pending = v
				hasPending = true
				mu.Unlock()
				schedule()
			},
			Error: func(err error) {
				timerDisp.Dispose()
				downstream.error(err)
			},
			Complete: func() {
				mu.Lock()
				v := pending
				has := hasPending
				hasPending = false
				mu.Unlock()
				timerDisp.Dispose()
				if has {
					downstream.next(v)
				}
				downstream.complete()
			},
		}))
		return NewCompositeDisposable(upstream, timerDisp)
	})
}

// Sample emits the most recently seen value, if any, at every tick of
// interval, regardless of how many values arrived (or none) since the last
// tick (§4.8).
func (o Observable) Sample(interval time.Duration, scheduler Scheduler, clock Clock) Observable {
	if clock == nil {
		clock = RealClock
	}
	return Create(func(downstream Observer) Disposable {
		var mu sync.Mutex
		var latest any
		has := false
		sourceDone := false

		ticking := RunRecursive(scheduler, func(self func()) {
			<-clock.After(interval)
			mu.Lock()
			v := latest
			hv := has
			has = false
			done := sourceDone
			mu.Unlock()
			if hv {
				downstream.next(v)
			}
			if done {
				return
			}
			self()
		})
		upstream := o.subscribe(Protect(Observer{
			Next: func(v any) {
				mu.Lock()
				latest = v
				has = true
				mu.Unlock()
			},
			Error: func(err error) {
				mu.Lock()
				sourceDone = true
				mu.Unlock()
				downstream.error(err)
			},
			Complete: func() {
				mu.Lock()
				sourceDone = true
				mu.Unlock()
				downstream.complete()
			},
		}))
		return NewCompositeDisposable(ticking, upstream)
	})
}

// AuditTime forwards the most recent value once per duration-long window:
// the first value after an idle period opens the window; every later value
// arriving inside it only updates what will be emitted when the window
// closes (§C "SUPPLEMENTED FEATURES"). Unlike Debounce, later values do not
// restart the window.
func (o Observable) AuditTime(duration time.Duration, scheduler Scheduler, clock Clock) Observable {
	if clock == nil {
		clock = RealClock
	}
	return Create(func(downstream Observer) Disposable {
		var mu sync.Mutex
		var latest any
		has := false
		auditing := false
		timerDisp := NewAssignableDisposable()

		var startAudit func()
		startAudit = func() {
			timerDisp.Set(scheduler.Run(func() {
				<-clock.After(duration)
				mu.Lock()
				v := latest
				hv := has
				has = false
				auditing = false
				mu.Unlock()
				if hv {
					downstream.next(v)
				}
			}))
		}

		upstream := o.subscribe(Protect(Observer{
			Next: func(v any) {
				mu.Lock()
				latest = v
				has = true
				start := !auditing
				if start {
					auditing = true
				}
				mu.Unlock()
				if start {
					startAudit()
				}
			},
			Error: func(err error) {
				timerDisp.Dispose()
				downstream.error(err)
			},
			Complete: func() {
				mu.Lock()
				v := latest
				hv := has
				has = false
				mu.Unlock()
				timerDisp.Dispose()
				if hv {
					downstream.next(v)
				}
				downstream.complete()
			},
		}))
		return NewCompositeDisposable(upstream, timerDisp)
	})
}

// BufferWithCount groups values into []any slices of size n, emitting a
// slice every time it fills and a final short slice (if any) on Complete
// (§4.8).
func (o Observable) BufferWithCount(n int) Observable {
	return lift(o, func(downstream Observer) Observer {
		buf := make([]any, 0, n)
		return Observer{
			Next: func(v any) {
				buf = append(buf, v)
				if len(buf) >= n {
					downstream.next(buf)
					buf = make([]any, 0, n)
				}
			},
			Error: downstream.error,
			Complete: func() {
				if len(buf) > 0 {
					downstream.next(buf)
				}
				downstream.complete()
			},
		}
	})
}

// BufferWithTime groups values arriving within each duration-long tick into
// a []any slice, emitting one slice (possibly empty) per tick, plus a final
// slice on Complete if any values arrived since the last tick (§4.8).
func (o Observable) BufferWithTime(duration time.Duration, scheduler Scheduler, clock Clock) Observable {
	if clock == nil {
		clock = RealClock
	}
	return Create(func(downstream Observer) Disposable {
		var mu sync.Mutex
		buf := []any{}
		sourceDone := false
		flush := func() []any {
			b := buf
			buf = []any{}
			return b
		}

		ticking := RunRecursive(scheduler, func(self func()) {
			<-clock.After(duration)
			mu.Lock()
			b := flush()
			done := sourceDone
			mu.Unlock()
			downstream.next(b)
			if done {
				return
			}
			self()
		})
		upstream := o.subscribe(Protect(Observer{
			Next: func(v any) {
				mu.Lock()
				buf = append(buf, v)
				mu.Unlock()
			},
			Error: func(err error) {
				mu.Lock()
				sourceDone = true
				mu.Unlock()
				downstream.error(err)
			},
			Complete: func() {
				mu.Lock()
				sourceDone = true
				b := flush()
				mu.Unlock()
				if len(b) > 0 {
					downstream.next(b)
				}
				downstream.complete()
			},
		}))
		return NewCompositeDisposable(ticking, upstream)
	})
}

// BufferWithTimeOrCount flushes whichever comes first: count values
// buffered, or duration elapsed since the last flush. The timer restarts
// from whichever trigger fired (§4.8).
func (o Observable) BufferWithTimeOrCount(duration time.Duration, count int, scheduler Scheduler, clock Clock) Observable {
	if clock == nil {
		clock = RealClock
	}
	return Create(func(downstream Observer) Disposable {
		var mu sync.Mutex
		buf := []any{}
		gen := 0
		timerDisp := NewAssignableDisposable()

		flushLocked := func() []any {
			b := buf
			buf = []any{}
			gen++
			return b
		}
		var startTimer func()
		startTimer = func() {
			myGen := gen
			timerDisp.Set(scheduler.Run(func() {
				<-clock.After(duration)
				mu.Lock()
				if gen != myGen {
					mu.Unlock()
					return
				}
				b := flushLocked()
				mu.Unlock()
				if len(b) > 0 {
					downstream.next(b)
				}
				startTimer()
			}))
		}
		startTimer()

		upstream := o.subscribe(Protect(Observer{
			Next: func(v any) {
				mu.Lock()
				buf = append(buf, v)
				full := len(buf) >= count
				var b []any
				if full {
					b = flushLocked()
				}
				mu.Unlock()
				if full {
					downstream.next(b)
					startTimer()
				}
			},
			Error: func(err error) {
				timerDisp.Dispose()
				downstream.error(err)
			},
			Complete: func() {
				mu.Lock()
				b := flushLocked()
				mu.Unlock()
				timerDisp.Dispose()
				if len(b) > 0 {
					downstream.next(b)
				}
				downstream.complete()
			},
		}))
		return NewCompositeDisposable(upstream, timerDisp)
	})
}

// WindowWithCount is Buffer's Observable-of-Observables cousin: instead of
// slices, every n values are routed into a fresh inner Observable, which
// completes as the next one opens (§4.8).
func (o Observable) WindowWithCount(n int) Observable {
	return Create(func(downstream Observer) Disposable {
		var mu sync.Mutex
		var current *Subject
		count := 0
		openWindow := func() {
			current = NewSubject()
			downstream.next(current.AsObservable())
		}

		mu.Lock()
		openWindow()
		mu.Unlock()

		upstream := o.subscribe(Protect(Observer{
			Next: func(v any) {
				mu.Lock()
				current.Next(v)
				count++
				if count >= n {
					current.Complete()
					count = 0
					openWindow()
				}
				mu.Unlock()
			},
			Error: func(err error) {
				mu.Lock()
				current.Error(err)
				mu.Unlock()
				downstream.error(err)
			},
			Complete: func() {
				mu.Lock()
				current.Complete()
				mu.Unlock()
				downstream.complete()
			},
		}))
		return upstream
	})
}

// WindowWithTime rotates to a fresh inner Observable every duration-long
// tick (§4.8).
func (o Observable) WindowWithTime(duration time.Duration, scheduler Scheduler, clock Clock) Observable {
	if clock == nil {
		clock = RealClock
	}
	return Create(func(downstream Observer) Disposable {
		var mu sync.Mutex
		var current *Subject
		sourceDone := false
		openWindow := func() {
			current = NewSubject()
			downstream.next(current.AsObservable())
		}

		mu.Lock()
		openWindow()
		mu.Unlock()

		ticking := RunRecursive(scheduler, func(self func()) {
			<-clock.After(duration)
			mu.Lock()
			current.Complete()
			done := sourceDone
			if !done {
				openWindow()
			}
			mu.Unlock()
			if done {
				return
			}
			self()
		})
		upstream := o.subscribe(Protect(Observer{
			Next: func(v any) {
				mu.Lock()
				current.Next(v)
				mu.Unlock()
			},
			Error: func(err error) {
				mu.Lock()
				sourceDone = true
				current.Error(err)
				mu.Unlock()
				downstream.error(err)
			},
			Complete: func() {
				mu.Lock()
				sourceDone = true
				current.Complete()
				mu.Unlock()
				downstream.complete()
			},
		}))
		return NewCompositeDisposable(ticking, upstream)
	})
}

// Delay shifts every event (Next, Error, and Complete alike) later by
// duration, preserving their relative order (§4.8).
func (o Observable) Delay(duration time.Duration, scheduler Scheduler, clock Clock) Observable {
	if clock == nil {
		clock = RealClock
	}
	return Create(func(downstream Observer) Disposable {
		composite := NewCompositeDisposable()
		// Events pass through one FIFO drain, each waiting only until its own
		// due time, so a later event is never delivered ahead of an earlier one.
		drain := newSerialDrain(scheduler)
		schedule := func(fn func()) {
			due := clock.Now().Add(duration)
			drain.enqueue(func() {
				if wait := due.Sub(clock.Now()); wait > 0 {
					<-clock.After(wait)
				}
				if !composite.IsDisposed() {
					fn()
				}
			})
		}
		upstream := o.subscribe(Protect(Observer{
			Next:     func(v any) { schedule(func() { downstream.next(v) }) },
			Error:    func(err error) { schedule(func() { downstream.error(err) }) },
			Complete: func() { schedule(func() { downstream.complete() }) },
		}))
		composite.Add(upstream)
		return composite
	})
}

// Timeout errors with ErrTimeout if no Next arrives within duration of
// subscribing or of the previous Next (§4.8).
func (o Observable) Timeout(duration time.Duration, scheduler Scheduler, clock Clock) Observable {
	if clock == nil {
		clock = RealClock
	}
	return Create(func(downstream Observer) Disposable {
		var mu sync.Mutex
		gen := 0
		done := false
		timerDisp := NewAssignableDisposable()

		var arm func()
		arm = func() {
			mu.Lock()
			gen++
			myGen := gen
			mu.Unlock()
			timerDisp.Set(scheduler.Run(func() {
				<-clock.After(duration)
				mu.Lock()
				if done || gen != myGen {
					mu.Unlock()
					return
				}
				done = true
				mu.Unlock()
				downstream.error(ErrTimeout)
			}))
		}
		arm()

		upstream := o.subscribe(Protect(Observer{
			Next: func(v any) {
				mu.Lock()
				if done {
					mu.Unlock()
					return
				}
				mu.Unlock()
				downstream.next(v)
				arm()
			},
			Error: func(err error) {
				mu.Lock()
				if done {
					mu.Unlock()
					return
				}
				done = true
				mu.Unlock()
				timerDisp.Dispose()
				downstream.error(err)
			},
			Complete: func() {
				mu.Lock()
				if done {
					mu.Unlock()
					return
				}
				done = true
				mu.Unlock()
				timerDisp.Dispose()
				downstream.complete()
			},
		}))
		return NewCompositeDisposable(upstream, timerDisp)
	})
}

// Timestamped pairs a value with the instant it arrived, as produced by
// Observable.Timestamp.
type Timestamped struct {
	Value any
	At    time.Time
}

// Timestamp wraps every value in a Timestamped recording clock.Now() at
// arrival (§4.8).
func (o Observable) Timestamp(clock Clock) Observable {
	if clock == nil {
		clock = RealClock
	}
	return lift(o, func(downstream Observer) Observer {
		return Observer{
			Next:     func(v any) { downstream.next(Timestamped{Value: v, At: clock.Now()}) },
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}

// TimeIntervalValue pairs a value with the time elapsed since the previous
// value (or since subscribe, for the first), as produced by
// Observable.TimeInterval.
type TimeIntervalValue struct {
	Value   any
	Elapsed time.Duration
}

// TimeInterval wraps every value in a TimeIntervalValue recording the gap
// since the previous one (§4.8).
func (o Observable) TimeInterval(clock Clock) Observable {
	if clock == nil {
		clock = RealClock
	}
	return lift(o, func(downstream Observer) Observer {
		last := clock.Now()
		return Observer{
			Next: func(v any) {
				now := clock.Now()
				elapsed := now.Sub(last)
				last = now
				downstream.next(TimeIntervalValue{Value: v, Elapsed: elapsed})
			},
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}
