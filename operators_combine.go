package rx

import (
	"fmt"
	"sync"
)

// Merge subscribes to every source immediately; every inner Next is
// forwarded downstream as it arrives. The result completes once every
// source has completed; any source erroring is fatal — every other source
// is disposed and the error propagates immediately (§4.6).
func Merge(sources ...Observable) Observable {
	return Create(func(downstream Observer) Disposable {
		if len(sources) == 0 {
			downstream.complete()
			return Noop
		}
		var mu sync.Mutex
		pending := len(sources)
		done := false
		composite := NewCompositeDisposable()

		for _, src := range sources {
			d := src.subscribe(Protect(Observer{
				Next: func(v any) {
					mu.Lock()
					skip := done
					mu.Unlock()
					if !skip {
						downstream.next(v)
					}
				},
				Error: func(err error) {
					mu.Lock()
					if done {
						mu.Unlock()
						return
					}
					done = true
					mu.Unlock()
					downstream.error(err)
					composite.Dispose()
				},
				Complete: func() {
					mu.Lock()
					pending--
					finished := pending == 0 && !done
					if finished {
						done = true
					}
					mu.Unlock()
					if finished {
						downstream.complete()
					}
				},
			}))
			composite.Add(d)
		}
		return composite
	})
}

// MergeAll treats every value emitted by outer as an Observable and merges
// them all into one stream, per §4.6's "merge(streamOfStreams)". FlatMap is
// built directly on this, matching the spec's own definition
// flatMap(f) ≡ source.map(f).merge().
func MergeAll(outer Observable) Observable {
	return Create(func(downstream Observer) Disposable {
		var mu sync.Mutex
		outerDone := false
		activeInner := 0
		done := false
		composite := NewCompositeDisposable()

		finishIfDone := func() {
			if outerDone && activeInner == 0 && !done {
				done = true
				downstream.complete()
			}
		}

		outerSub := outer.subscribe(Protect(Observer{
			Next: func(v any) {
				inner, ok := v.(Observable)
				if !ok {
					mu.Lock()
					if done {
						mu.Unlock()
						return
					}
					done = true
					mu.Unlock()
					downstream.error(newError(KindUser, "merge", fmt.Errorf("value is not an Observable: %T", v)))
					composite.Dispose()
					return
				}
				mu.Lock()
				if done {
					mu.Unlock()
					return
				}
				activeInner++
				mu.Unlock()

				innerSub := inner.subscribe(Protect(Observer{
					Next: func(v any) {
						mu.Lock()
						skip := done
						mu.Unlock()
						if !skip {
							downstream.next(v)
						}
					},
					Error: func(err error) {
						mu.Lock()
						if done {
							mu.Unlock()
							return
						}
						done = true
						mu.Unlock()
						downstream.error(err)
						composite.Dispose()
					},
					Complete: func() {
						mu.Lock()
						activeInner--
						finishIfDone()
						mu.Unlock()
					},
				}))
				composite.Add(innerSub)
			},
			Error: func(err error) {
				mu.Lock()
				if done {
					mu.Unlock()
					return
				}
				done = true
				mu.Unlock()
				downstream.error(err)
				composite.Dispose()
			},
			Complete: func() {
				mu.Lock()
				outerDone = true
				finishIfDone()
				mu.Unlock()
			},
		}))
		composite.Add(outerSub)
		return composite
	})
}

// FlatMap maps every value to an Observable via f and merges the results,
// per the spec's own definition flatMap(f) ≡ source.map(f).merge() (§4.6).
func (o Observable) FlatMap(f func(any) Observable) Observable {
	return MergeAll(o.Map(func(v any) any { return f(v) }))
}

// Concat subscribes to sources strictly in order, only subscribing to the
// next one after the previous has completed (§4.6). Because each
// subsequent subscribe happens synchronously from within the prior source's
// Complete callback, the "outer completes vs inner completes" race the
// original implementation handled with two flags (§9's open question)
// cannot arise here: there is only ever one live subscription at a time.
func Concat(sources ...Observable) Observable {
	return Create(func(downstream Observer) Disposable {
		if len(sources) == 0 {
			downstream.complete()
			return Noop
		}
		current := NewAssignableDisposable()
		idx := 0
		var subscribeNext func()
		subscribeNext = func() {
			if idx >= len(sources) {
				downstream.complete()
				return
			}
			src := sources[idx]
			idx++
			// A source that completes synchronously has already moved current
			// on to the next source by the time its subscribe returns; its own
			// disposable goes into inner so it cannot replace that one.
			inner := NewAssignableDisposable()
			current.Set(inner)
			inner.Set(src.subscribe(Protect(Observer{
				Next:     downstream.next,
				Error:    downstream.error,
				Complete: subscribeNext,
			})))
		}
		subscribeNext()
		return current
	})
}

// Zip maintains one FIFO queue per source; whenever every queue has at
// least one element, the heads are dequeued and passed to fn. The join
// completes once any source has completed and its queue has drained
// (§4.6).
func Zip(fn func(vals []any) any, sources ...Observable) Observable {
	return Create(func(downstream Observer) Disposable {
		n := len(sources)
		if n == 0 {
			downstream.complete()
			return Noop
		}
		queues := make([][]any, n)
		completed := make([]bool, n)
		var mu sync.Mutex
		done := false
		composite := NewCompositeDisposable()

		// drainLocked dequeues every tuple that is currently ready and reports
		// whether the join has finished. It must run with mu held but must
		// never itself call downstream — the caller emits the results after
		// unlocking, per §5's "MUST NOT hold locks across calls to downstream
		// observers".
		drainLocked := func() (results []any, finished bool) {
			for {
				ready := true
				for i := 0; i < n; i++ {
					if len(queues[i]) == 0 {
						ready = false
						break
					}
				}
				if !ready {
					break
				}
				vals := make([]any, n)
				for i := 0; i < n; i++ {
					vals[i] = queues[i][0]
					queues[i] = queues[i][1:]
				}
				results = append(results, fn(vals))
			}
			for i := 0; i < n; i++ {
				if completed[i] && len(queues[i]) == 0 {
					return results, true
				}
			}
			return results, false
		}

		emit := func(results []any, finished bool) {
			for _, r := range results {
				downstream.next(r)
			}
			if finished {
				downstream.complete()
				composite.Dispose()
			}
		}

		for idx, src := range sources {
			i := idx
			d := src.subscribe(Protect(Observer{
				Next: func(v any) {
					mu.Lock()
					if done {
						mu.Unlock()
						return
					}
					queues[i] = append(queues[i], v)
					results, finished := drainLocked()
					if finished {
						done = true
					}
					mu.Unlock()
					emit(results, finished)
				},
				Error: func(err error) {
					mu.Lock()
					if done {
						mu.Unlock()
						return
					}
					done = true
					mu.Unlock()
					downstream.error(err)
					composite.Dispose()
				},
				Complete: func() {
					mu.Lock()
					if done {
						mu.Unlock()
						return
					}
					completed[i] = true
					results, finished := drainLocked()
					if finished {
						done = true
					}
					mu.Unlock()
					emit(results, finished)
				},
			}))
			composite.Add(d)
		}
		return composite
	})
}

// CombineLatest holds the latest value seen from each source and emits
// fn(latest...) on every Next once every source has produced at least one
// value (§4.6).
func CombineLatest(fn func(vals []any) any, sources ...Observable) Observable {
	return Create(func(downstream Observer) Disposable {
		n := len(sources)
		if n == 0 {
			downstream.complete()
			return Noop
		}
		latest := make([]any, n)
		has := make([]bool, n)
		active := n
		var mu sync.Mutex
		done := false
		composite := NewCompositeDisposable()

		allHave := func() bool {
			for _, h := range has {
				if !h {
					return false
				}
			}
			return true
		}

		for idx, src := range sources {
			i := idx
			d := src.subscribe(Protect(Observer{
				Next: func(v any) {
					mu.Lock()
					if done {
						mu.Unlock()
						return
					}
					latest[i] = v
					has[i] = true
					if !allHave() {
						mu.Unlock()
						return
					}
					vals := append([]any(nil), latest...)
					mu.Unlock()
					downstream.next(fn(vals))
				},
				Error: func(err error) {
					mu.Lock()
					if done {
						mu.Unlock()
						return
					}
					done = true
					mu.Unlock()
					downstream.error(err)
					composite.Dispose()
				},
				Complete: func() {
					mu.Lock()
					active--
					finished := active == 0 && !done
					if finished {
						done = true
					}
					mu.Unlock()
					if finished {
						downstream.complete()
					}
				},
			}))
			composite.Add(d)
		}
		return composite
	})
}

// SwitchLatest subscribes to outer (a stream of Observables); each new
// inner cancels and replaces the currently-active one. The result
// completes once outer has completed and the last active inner has
// completed (§4.6).
func SwitchLatest(outer Observable) Observable {
	return Create(func(downstream Observer) Disposable {
		var mu sync.Mutex
		outerDone := false
		innerActive := false
		done := false
		currentInner := NewAssignableDisposable()

		finishIfDone := func() {
			if outerDone && !innerActive && !done {
				done = true
				downstream.complete()
			}
		}

		outerSub := outer.subscribe(Protect(Observer{
			Next: func(v any) {
				inner, ok := v.(Observable)
				if !ok {
					mu.Lock()
					if done {
						mu.Unlock()
						return
					}
					done = true
					mu.Unlock()
					downstream.error(newError(KindUser, "switchLatest", fmt.Errorf("value is not an Observable: %T", v)))
					currentInner.Dispose()
					return
				}
				mu.Lock()
				if done {
					mu.Unlock()
					return
				}
				innerActive = true
				mu.Unlock()

				currentInner.Set(inner.subscribe(Protect(Observer{
					Next: func(v any) {
						mu.Lock()
						skip := done
						mu.Unlock()
						if !skip {
							downstream.next(v)
						}
					},
					Error: func(err error) {
						mu.Lock()
						if done {
							mu.Unlock()
							return
						}
						done = true
						mu.Unlock()
						downstream.error(err)
					},
					Complete: func() {
						mu.Lock()
						innerActive = false
						finishIfDone()
						mu.Unlock()
					},
				})))
			},
			Error: func(err error) {
				mu.Lock()
				if done {
					mu.Unlock()
					return
				}
				done = true
				mu.Unlock()
				downstream.error(err)
				currentInner.Dispose()
			},
			Complete: func() {
				mu.Lock()
				outerDone = true
				finishIfDone()
				mu.Unlock()
			},
		}))
		return NewCompositeDisposable(outerSub, currentInner)
	})
}

// Amb subscribes to every source; whichever produces the first event of any
// kind wins, the rest are disposed, and the result behaves as the winner
// from then on (§4.6).
func Amb(sources ...Observable) Observable {
	return Create(func(downstream Observer) Disposable {
		var mu sync.Mutex
		winner := -1
		disposables := make([]Disposable, len(sources))

		disposeOthers := func(idx int) {
			for i, d := range disposables {
				if i != idx && d != nil {
					d.Dispose()
				}
			}
		}
		claim := func(i int) bool {
			mu.Lock()
			defer mu.Unlock()
			if winner == -1 {
				winner = i
				return true
			}
			return winner == i
		}

		for idx, src := range sources {
			i := idx
			disposables[i] = src.subscribe(Protect(Observer{
				Next: func(v any) {
					first := claim(i)
					if first {
						disposeOthers(i)
					}
					if winnerIs(&mu, &winner, i) {
						downstream.next(v)
					}
				},
				Error: func(err error) {
					first := claim(i)
					if first {
						disposeOthers(i)
					}
					if winnerIs(&mu, &winner, i) {
						downstream.error(err)
					}
				},
				Complete: func() {
					first := claim(i)
					if first {
						disposeOthers(i)
					}
					if winnerIs(&mu, &winner, i) {
						downstream.complete()
					}
				},
			}))
		}
		return NewCompositeDisposable(disposables...)
	})
}

func winnerIs(mu *sync.Mutex, winner *int, i int) bool {
	mu.Lock()
	defer mu.Unlock()
	return *winner == i
}

// StartWith prepends values, synthesized ahead of the source, to o (§4.6).
func (o Observable) StartWith(values ...any) Observable {
	return Concat(Just(values...), o)
}

// EndWith appends values, synthesized after the source completes, to o
// (§4.6).
func (o Observable) EndWith(values ...any) Observable {
	return Concat(o, Just(values...))
}

// GroupedObservable is the per-key stream produced by GroupBy: an
// Observable filtered to members sharing Key, which inherits the parent's
// lifecycle and completes with it (§3, §4.6).
type GroupedObservable struct {
	Key any
	Observable
}

// GroupBy emits one GroupedObservable per distinct key encountered, in
// first-seen order. Each member value is also routed into its group's
// stream (§4.6).
func (o Observable) GroupBy(keyFn func(any) any) Observable {
	return Create(func(downstream Observer) Disposable {
		var mu sync.Mutex
		groups := make(map[any]*Subject)

		sub := o.subscribe(Protect(Observer{
			Next: func(v any) {
				key := keyFn(v)
				mu.Lock()
				g, ok := groups[key]
				if !ok {
					g = NewSubject()
					groups[key] = g
				}
				mu.Unlock()
				if !ok {
					downstream.next(GroupedObservable{Key: key, Observable: g.AsObservable()})
				}
				g.Next(v)
			},
			Error: func(err error) {
				mu.Lock()
				snapshot := groups
				groups = nil
				mu.Unlock()
				for _, g := range snapshot {
					g.Error(err)
				}
				downstream.error(err)
			},
			Complete: func() {
				mu.Lock()
				snapshot := groups
				groups = nil
				mu.Unlock()
				for _, g := range snapshot {
					g.Complete()
				}
				downstream.complete()
			},
		}))
		return sub
	})
}
