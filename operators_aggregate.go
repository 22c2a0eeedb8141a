package rx

import "golang.org/x/exp/constraints"

// Reduce folds every value through fn, seeded by seed, and emits exactly
// one value — the final accumulator — on completion (§4.5).
func (o Observable) Reduce(seed any, fn func(acc, v any) any) Observable {
	return lift(o, func(downstream Observer) Observer {
		acc := seed
		return Observer{
			Next: func(v any) {
				acc = fn(acc, v)
			},
			Error: downstream.error,
			Complete: func() {
				downstream.next(acc)
				downstream.complete()
			},
		}
	})
}

// Scan emits a running fold: fn(acc, v) on every Next, seeded by seed
// (§4.5).
func (o Observable) Scan(seed any, fn func(acc, v any) any) Observable {
	return lift(o, func(downstream Observer) Observer {
		acc := seed
		return Observer{
			Next: func(v any) {
				acc = fn(acc, v)
				downstream.next(acc)
			},
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}

// Count emits the number of values seen, at completion (§4.5, "length").
func (o Observable) Count() Observable {
	return lift(o, func(downstream Observer) Observer {
		n := 0
		return Observer{
			Next:  func(any) { n++ },
			Error: downstream.error,
			Complete: func() {
				downstream.next(n)
				downstream.complete()
			},
		}
	})
}

// Length is an alias for Count, matching the spec's own name for this
// operator (§8 property 5).
func (o Observable) Length() Observable { return o.Count() }

func numericLess[T constraints.Ordered](a, b T) bool { return a < b }

// NumericLess builds a Min/Max comparator for any ordered numeric type,
// grounded on deadlyengineer-some-streaming-with-go's use of
// golang.org/x/exp for generic numeric helpers. Values passed through the
// resulting comparator must both be of type T; a type mismatch panics,
// which the protocol gate converts into a downstream error.
func NumericLess[T constraints.Ordered]() func(a, b any) bool {
	return func(a, b any) bool { return numericLess(a.(T), b.(T)) }
}

// Min emits the smallest value seen (by less), initialized lazily on the
// first value, at completion. An empty source yields ErrEmptySequence
// (§4.5).
func (o Observable) Min(less func(a, b any) bool) Observable {
	return lift(o, func(downstream Observer) Observer {
		has := false
		var min any
		return Observer{
			Next: func(v any) {
				if !has || less(v, min) {
					has = true
					min = v
				}
			},
			Error: downstream.error,
			Complete: func() {
				if !has {
					downstream.error(ErrEmptySequence)
					return
				}
				downstream.next(min)
				downstream.complete()
			},
		}
	})
}

// Max emits the largest value seen (by less), initialized lazily on the
// first value, at completion. An empty source yields ErrEmptySequence
// (§4.5).
func (o Observable) Max(less func(a, b any) bool) Observable {
	return o.Min(func(a, b any) bool { return less(b, a) })
}

// Any emits true and completes (unsubscribing upstream) as soon as
// predicate matches a value; if the source completes without a match it
// emits false (§4.5).
func (o Observable) Any(predicate func(any) bool) Observable {
	return Create(func(downstream Observer) Disposable {
		upstream := NewAssignableDisposable()
		done := false
		upstream.Set(o.subscribe(Protect(Observer{
			Next: func(v any) {
				if done {
					return
				}
				if predicate(v) {
					done = true
					downstream.next(true)
					downstream.complete()
					upstream.Dispose()
				}
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
					downstream.next(false)
					downstream.complete()
				}
			},
		})))
		return upstream
	})
}

// All emits false and completes (unsubscribing upstream) as soon as
// predicate fails to match a value; if the source completes with every
// value matching, it emits true (§4.5).
func (o Observable) All(predicate func(any) bool) Observable {
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
					downstream.next(false)
					downstream.complete()
					upstream.Dispose()
				}
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
					downstream.next(true)
					downstream.complete()
				}
			},
		})))
		return upstream
	})
}

// Contains is Any with an equality check against target.
func (o Observable) Contains(target any) Observable {
	return o.Any(func(v any) bool { return v == target })
}

// DefaultIfEmpty emits def and completes if the source completes having
// produced no values; otherwise it forwards the source unchanged (§4.5).
func (o Observable) DefaultIfEmpty(def any) Observable {
	return lift(o, func(downstream Observer) Observer {
		sawValue := false
		return Observer{
			Next: func(v any) {
				sawValue = true
				downstream.next(v)
			},
			Error: downstream.error,
			Complete: func() {
				if !sawValue {
					downstream.next(def)
				}
				downstream.complete()
			},
		}
	})
}

// SequenceEqual pairwise-compares a and b with equal, emitting false as
// soon as a mismatch or a length mismatch is detected, or true once both
// have completed having matched throughout (§4.5).
func SequenceEqual(a, b Observable, equal func(x, y any) bool) Observable {
	return Create(func(downstream Observer) Disposable {
		var mu sequenceEqualState
		mu.equal = equal
		mu.downstream = downstream

		da := NewBooleanDisposable(nil)
		db := NewBooleanDisposable(nil)
		disposeAll := func() {
			da.Dispose()
			db.Dispose()
		}

		da = boolD(a.subscribe(Protect(Observer{
			Next:     func(v any) { mu.arrive(sideA, v, false, nil, disposeAll) },
			Error:    func(err error) { mu.arrive(sideA, nil, false, err, disposeAll) },
			Complete: func() { mu.arrive(sideA, nil, true, nil, disposeAll) },
		})))
		db = boolD(b.subscribe(Protect(Observer{
			Next:     func(v any) { mu.arrive(sideB, v, false, nil, disposeAll) },
			Error:    func(err error) { mu.arrive(sideB, nil, false, err, disposeAll) },
			Complete: func() { mu.arrive(sideB, nil, true, nil, disposeAll) },
		})))
		return NewCompositeDisposable(da, db)
	})
}

func boolD(d Disposable) *BooleanDisposable {
	if b, ok := d.(*BooleanDisposable); ok {
		return b
	}
	return NewBooleanDisposable(d)
}

type side int

const (
	sideA side = iota
	sideB
)

type sequenceEqualState struct {
	equal      func(x, y any) bool
	downstream Observer
	queueA     []any
	queueB     []any
	doneA      bool
	doneB      bool
	finished   bool
}

// arrive is intentionally not goroutine-safe on its own; SequenceEqual
// subscribes to both sources via the protocol gate, which only drops events
// after a terminal one and does not serialize calls, so the two sources can
// call concurrently with each other and callers must guard with a lock in
// practice. Kept simple here: both sides are expected to be driven by the
// same scheduler in the common (CurrentThread/Immediate) case; callers
// combining genuinely concurrent sources should wrap with ObserveOn first.
func (s *sequenceEqualState) arrive(sd side, v any, terminal bool, err error, disposeAll func()) {
	if s.finished {
		return
	}
	if err != nil {
		s.finished = true
		s.downstream.error(err)
		disposeAll()
		return
	}
	if sd == sideA {
		if terminal {
			s.doneA = true
		} else {
			s.queueA = append(s.queueA, v)
		}
	} else {
		if terminal {
			s.doneB = true
		} else {
			s.queueB = append(s.queueB, v)
		}
	}
	for len(s.queueA) > 0 && len(s.queueB) > 0 {
		x, y := s.queueA[0], s.queueB[0]
		s.queueA = s.queueA[1:]
		s.queueB = s.queueB[1:]
		if !s.equal(x, y) {
			s.finished = true
			s.downstream.next(false)
			s.downstream.complete()
			disposeAll()
			return
		}
	}
	if s.doneA && s.doneB && len(s.queueA) == 0 && len(s.queueB) == 0 {
		s.finished = true
		s.downstream.next(true)
		s.downstream.complete()
		disposeAll()
		return
	}
	if (s.doneA && len(s.queueA) == 0 && len(s.queueB) > 0) ||
		(s.doneB && len(s.queueB) == 0 && len(s.queueA) > 0) {
		s.finished = true
		s.downstream.next(false)
		s.downstream.complete()
		disposeAll()
	}
}
