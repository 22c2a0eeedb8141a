package rx

import (
	"reflect"
	"time"
)

// Just creates an Observable that emits each of values in order, then
// completes (§4.3).
func Just(values ...any) Observable {
	return Create(func(obs Observer) Disposable {
		for _, v := range values {
			obs.next(v)
		}
		obs.complete()
		return Noop
	})
}

// Empty creates an Observable that completes immediately without emitting
// any value (§4.3).
var Empty = Create(func(obs Observer) Disposable {
	obs.complete()
	return Noop
})

// Never creates an Observable that never emits and never terminates
// (§4.3).
var Never = Create(func(obs Observer) Disposable {
	return Noop
})

// Throw creates an Observable that immediately errors with err (§4.3;
// spelled "error(e)" in the spec, named Throw here to avoid shadowing the
// builtin error type's common identifier "error").
func Throw(err error) Observable {
	return Create(func(obs Observer) Disposable {
		obs.error(err)
		return Noop
	})
}

// Range emits count values starting at start, advancing by step each time,
// then completes. step must be >= 1 (§4.3).
func Range(start, count, step int) Observable {
	return Create(func(obs Observer) Disposable {
		v := start
		for i := 0; i < count; i++ {
			obs.next(v)
			v += step
		}
		obs.complete()
		return Noop
	})
}

// Unfold emits select(state) for as long as condition(state) holds, letting
// state advance via iterate(state) between emissions; the seed is tested by
// condition before the first emission (§4.3).
func Unfold(seed any, condition func(any) bool, iterate func(any) any, selectFn func(any) any) Observable {
	return Create(func(obs Observer) Disposable {
		state := seed
		for condition(state) {
			obs.next(selectFn(state))
			state = iterate(state)
		}
		obs.complete()
		return Noop
	})
}

// Defer re-invokes factory for every subscription, so each subscriber gets
// an independently constructed source (§4.3). A panic from factory itself
// is delivered as an error to the subscriber, per §9's recommended
// resolution of that open question.
func Defer(factory func() Observable) Observable {
	return Create(func(obs Observer) (d Disposable) {
		defer func() {
			if r := recover(); r != nil {
				obs.error(newError(KindUser, "defer", errAsError(r)))
				d = Noop
			}
		}()
		return factory().subscribe(obs)
	})
}

// FromIterable schedules iteration of iter onto scheduler, one element per
// work unit, so disposal between items is observed promptly (§4.3).
func FromIterable(iter []any, scheduler Scheduler) Observable {
	return Create(func(obs Observer) Disposable {
		i := 0
		return RunRecursive(scheduler, func(self func()) {
			if i >= len(iter) {
				obs.complete()
				return
			}
			v := iter[i]
			i++
			obs.next(v)
			self()
		})
	})
}

// StartAction defers fn to a scheduled work unit; its return value (or nil
// for a void action) is emitted, then the stream completes. An error
// returned by fn becomes the stream's error. Disposal before fn has run
// suppresses both (§4.3).
func StartAction(fn func() (any, error), scheduler Scheduler) Observable {
	return Create(func(obs Observer) Disposable {
		return scheduler.Run(func() {
			v, err := fn()
			if err != nil {
				obs.error(err)
				return
			}
			obs.next(v)
			obs.complete()
		})
	})
}

// Interval schedules sleep(period); emit(n); reschedule, forever, starting
// with n = 0. Cancellation is observed at each reschedule point (§4.3).
func Interval(period time.Duration, scheduler Scheduler, clock Clock) Observable {
	if clock == nil {
		clock = RealClock
	}
	return Create(func(obs Observer) Disposable {
		n := 0
		return RunRecursive(scheduler, func(self func()) {
			<-clock.After(period)
			obs.next(n)
			n++
			self()
		})
	})
}

// Timer emits a single value (0) after delay, then completes. If period is
// non-zero it instead behaves like Interval after the initial delay,
// emitting 0, 1, 2, ... every period (§4.3).
func Timer(delay time.Duration, period time.Duration, scheduler Scheduler, clock Clock) Observable {
	if clock == nil {
		clock = RealClock
	}
	return Create(func(obs Observer) Disposable {
		n := 0
		return RunRecursive(scheduler, func(self func()) {
			wait := period
			if n == 0 {
				wait = delay
			}
			<-clock.After(wait)
			obs.next(n)
			n++
			if period <= 0 {
				obs.complete()
				return
			}
			self()
		})
	})
}

// Repeat replays the given values up to count times in sequence (count <= 0
// means replay forever), completing after the final pass unless count <= 0
// (§4.3).
func Repeat(values []any, count int, scheduler Scheduler) Observable {
	return Create(func(obs Observer) Disposable {
		pass := 0
		i := 0
		return RunRecursive(scheduler, func(self func()) {
			if i >= len(values) {
				pass++
				i = 0
				if count > 0 && pass >= count {
					obs.complete()
					return
				}
			}
			if len(values) == 0 {
				if count > 0 {
					obs.complete()
					return
				}
				self()
				return
			}
			v := values[i]
			i++
			obs.next(v)
			self()
		})
	})
}

// FromChan adapts an existing channel into an Observable: each received
// value becomes a Next, and the channel closing becomes Complete.
// Disposing the subscription stops reading from (but does not close) the
// channel. source must be a channel; FromChan panics otherwise, mirroring
// Spectonic-urx's FromChan.
func FromChan(source any) Observable {
	val := reflect.ValueOf(source)
	if val.Kind() != reflect.Chan {
		panic("rx.FromChan: a channel was not passed to FromChan")
	}
	return Create(func(obs Observer) Disposable {
		done := make(chan struct{})
		d := NewDisposable(func() { close(done) })
		go func() {
			for {
				chosen, recv, recvOK := reflect.Select([]reflect.SelectCase{
					{Dir: reflect.SelectRecv, Chan: val},
					{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(done)},
				})
				if chosen == 1 {
					return
				}
				if !recvOK {
					obs.complete()
					return
				}
				obs.next(recv.Interface())
			}
		}()
		return d
	})
}
