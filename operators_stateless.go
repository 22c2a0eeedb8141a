package rx

// Map applies f to every value (§4.4).
func (o Observable) Map(f func(any) any) Observable {
	return lift(o, func(downstream Observer) Observer {
		return Observer{
			Next:     func(v any) { downstream.next(f(v)) },
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}

// Filter forwards only values for which predicate returns true (§4.4).
func (o Observable) Filter(predicate func(any) bool) Observable {
	return lift(o, func(downstream Observer) Observer {
		return Observer{
			Next: func(v any) {
				if predicate(v) {
					downstream.next(v)
				}
			},
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}

// Take forwards only the first n values, then synthesizes Complete and
// unsubscribes upstream. If the source completes or errors first, that
// terminal event is forwarded as-is (§4.4).
func (o Observable) Take(n int) Observable {
	if n <= 0 {
		return Empty
	}
	return Create(func(downstream Observer) Disposable {
		upstream := NewAssignableDisposable()
		count := 0
		done := false
		upstream.Set(o.subscribe(Protect(Observer{
			Next: func(v any) {
				if done {
					return
				}
				count++
				downstream.next(v)
				if count >= n {
					done = true
					downstream.complete()
					upstream.Dispose()
				}
			},
			Error: func(err error) {
				if done {
					return
				}
				done = true
				downstream.error(err)
			},
			Complete: func() {
				if done {
					return
				}
				done = true
				downstream.complete()
			},
		})))
		return upstream
	})
}

// Skip drops the first n values and forwards the rest (§4.4).
func (o Observable) Skip(n int) Observable {
	return lift(o, func(downstream Observer) Observer {
		skipped := 0
		return Observer{
			Next: func(v any) {
				if skipped < n {
					skipped++
					return
				}
				downstream.next(v)
			},
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}

// TakeWhile forwards values while predicate holds, completing (without
// forwarding the first failing value) on the first false (§4.4).
func (o Observable) TakeWhile(predicate func(any) bool) Observable {
	return Create(func(downstream Observer) Disposable {
		upstream := NewAssignableDisposable()
		done := false
		upstream.Set(o.subscribe(Protect(Observer{
			Next: func(v any) {
				if done {
					return
				}
				if !predicate(v) {
					done = true
					downstream.complete()
					upstream.Dispose()
					return
				}
				downstream.next(v)
			},
			Error: func(err error) {
				if !done {
					done = true
					downstream.error(err)
				}
			},
			Complete: func() {
				if !done {
					done = true
					downstream.complete()
				}
			},
		})))
		return upstream
	})
}

// SkipWhile drops values while predicate holds and forwards everything from
// the first failing value onward, including that value (§4.4).
func (o Observable) SkipWhile(predicate func(any) bool) Observable {
	return lift(o, func(downstream Observer) Observer {
		skipping := true
		return Observer{
			Next: func(v any) {
				if skipping && predicate(v) {
					return
				}
				skipping = false
				downstream.next(v)
			},
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}

// TakeLast buffers the trailing n values in a circular buffer and flushes
// them, in arrival order, once the source completes (§4.4).
func (o Observable) TakeLast(n int) Observable {
	return lift(o, func(downstream Observer) Observer {
		buf := make([]any, 0, n)
		return Observer{
			Next: func(v any) {
				if n <= 0 {
					return
				}
				if len(buf) == n {
					buf = append(buf[1:], v)
				} else {
					buf = append(buf, v)
				}
			},
			Error: downstream.error,
			Complete: func() {
				for _, v := range buf {
					downstream.next(v)
				}
				downstream.complete()
			},
		}
	})
}

// SkipLast buffers trailing values until it has seen more than n, emitting
// the oldest buffered value on every subsequent Next, and discards the
// final n values (the "prefix" is therefore emitted as it becomes known,
// not all at once at completion) (§4.4).
func (o Observable) SkipLast(n int) Observable {
	if n <= 0 {
		return o
	}
	return lift(o, func(downstream Observer) Observer {
		buf := make([]any, 0, n)
		return Observer{
			Next: func(v any) {
				buf = append(buf, v)
				if len(buf) > n {
					downstream.next(buf[0])
					buf = buf[1:]
				}
			},
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}

// Distinct deduplicates by a hash set of every value seen so far; values
// must be comparable (§4.4).
func (o Observable) Distinct() Observable {
	return lift(o, func(downstream Observer) Observer {
		seen := make(map[any]struct{})
		return Observer{
			Next: func(v any) {
				if _, ok := seen[v]; ok {
					return
				}
				seen[v] = struct{}{}
				downstream.next(v)
			},
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}

// DistinctUntilChanged forwards a value only if it differs from the
// immediately preceding one (§4.4).
func (o Observable) DistinctUntilChanged() Observable {
	return lift(o, func(downstream Observer) Observer {
		has := false
		var last any
		return Observer{
			Next: func(v any) {
				if has && last == v {
					return
				}
				has = true
				last = v
				downstream.next(v)
			},
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}

// IgnoreElements drops every value but preserves the terminal event (§4.4).
func (o Observable) IgnoreElements() Observable {
	return lift(o, func(downstream Observer) Observer {
		return Observer{
			Next:     func(any) {},
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}

// OfType emits only values whose runtime type is T (§4.4).
func OfType[T any](o Observable) Observable {
	return lift(o, func(downstream Observer) Observer {
		return Observer{
			Next: func(v any) {
				if typed, ok := v.(T); ok {
					downstream.next(typed)
				}
			},
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}

// First emits exactly the first value then completes, unsubscribing
// upstream; an empty source yields ErrEmptySequence (§4.4).
func (o Observable) First() Observable {
	return Create(func(downstream Observer) Disposable {
		upstream := NewAssignableDisposable()
		done := false
		upstream.Set(o.subscribe(Protect(Observer{
			Next: func(v any) {
				if done {
					return
				}
				done = true
				downstream.next(v)
				downstream.complete()
				upstream.Dispose()
			},
			Error: func(err error) {
				if !done {
					done = true
					downstream.error(err)
				}
			},
			Complete: func() {
				if !done {
					done = true
					downstream.error(ErrEmptySequence)
				}
			},
		})))
		return upstream
	})
}

// Last emits the final value seen, then completes; an empty source yields
// ErrEmptySequence (§4.4).
func (o Observable) Last() Observable {
	return lift(o, func(downstream Observer) Observer {
		has := false
		var last any
		return Observer{
			Next: func(v any) {
				has = true
				last = v
			},
			Error: downstream.error,
			Complete: func() {
				if !has {
					downstream.error(ErrEmptySequence)
					return
				}
				downstream.next(last)
				downstream.complete()
			},
		}
	})
}

// ElementAt emits the value at the given zero-based index then completes;
// if the source completes before reaching it, ErrOutOfRange is delivered
// (§4.4).
func (o Observable) ElementAt(index int) Observable {
	return Create(func(downstream Observer) Disposable {
		upstream := NewAssignableDisposable()
		done := false
		i := 0
		upstream.Set(o.subscribe(Protect(Observer{
			Next: func(v any) {
				if done {
					return
				}
				if i == index {
					done = true
					downstream.next(v)
					downstream.complete()
					upstream.Dispose()
					return
				}
				i++
			},
			Error: func(err error) {
				if !done {
					done = true
					downstream.error(err)
				}
			},
			Complete: func() {
				if !done {
					done = true
					downstream.error(ErrOutOfRange)
				}
			},
		})))
		return upstream
	})
}

// DoOnNext taps the stream to run fn as a side effect for every value,
// without altering it (§C "SUPPLEMENTED FEATURES").
func (o Observable) DoOnNext(fn func(any)) Observable {
	return lift(o, func(downstream Observer) Observer {
		return Observer{
			Next: func(v any) {
				fn(v)
				downstream.next(v)
			},
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}

// DoOnError taps the stream to run fn as a side effect when it errors.
func (o Observable) DoOnError(fn func(error)) Observable {
	return lift(o, func(downstream Observer) Observer {
		return Observer{
			Next: downstream.next,
			Error: func(err error) {
				fn(err)
				downstream.error(err)
			},
			Complete: downstream.complete,
		}
	})
}

// DoOnComplete taps the stream to run fn as a side effect on completion.
func (o Observable) DoOnComplete(fn func()) Observable {
	return lift(o, func(downstream Observer) Observer {
		return Observer{
			Next:  downstream.next,
			Error: downstream.error,
			Complete: func() {
				fn()
				downstream.complete()
			},
		}
	})
}

// Do installs all three side-effect taps at once; any of the three may be
// nil.
func (o Observable) Do(onNext func(any), onError func(error), onComplete func()) Observable {
	return lift(o, func(downstream Observer) Observer {
		return Observer{
			Next: func(v any) {
				if onNext != nil {
					onNext(v)
				}
				downstream.next(v)
			},
			Error: func(err error) {
				if onError != nil {
					onError(err)
				}
				downstream.error(err)
			},
			Complete: func() {
				if onComplete != nil {
					onComplete()
				}
				downstream.complete()
			},
		}
	})
}
