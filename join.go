package rx

import "sync"

// Pattern names a set of sources that must each produce a value before a
// join plan fires. And grows a pattern by one more source (§4.11, §3
// "Plan / Pattern").
type Pattern struct {
	sources []Observable
}

// And starts a new Pattern combining o with other.
func (o Observable) And(other Observable) Pattern {
	return Pattern{sources: []Observable{o, other}}
}

// And grows the pattern with one more source.
func (p Pattern) And(other Observable) Pattern {
	sources := make([]Observable, len(p.sources)+1)
	copy(sources, p.sources)
	sources[len(p.sources)] = other
	return Pattern{sources: sources}
}

// Plan pairs a Pattern with the selector that computes its result once
// every source in the pattern has a value available (§4.11).
type Plan struct {
	pattern  Pattern
	selector func(vals []any) any
}

// Then attaches a selector to the pattern, producing a Plan. selector
// receives one value per source, in the order the pattern was built.
func (p Pattern) Then(selector func(vals []any) any) Plan {
	return Plan{pattern: p, selector: selector}
}

// When runs a join engine across every plan (§3 "Plan / Pattern", §4.11):
// each distinct source feeding any plan gets exactly one subscription and
// one shared FIFO queue, regardless of how many plans reference it. On
// every element delivered to a queue, the first matchable plan in declared
// order — the first whose every pattern source has a non-empty queue —
// dequeues one element from each of its sources and fires its selector; two
// plans sharing a source therefore compete for its queue rather than each
// independently consuming the same emission. A plan is done once any of
// its sources has completed with its queue empty; When completes once
// every plan is done.
func When(plans ...Plan) Observable {
	return Create(func(downstream Observer) Disposable {
		if len(plans) == 0 {
			downstream.complete()
			return Noop
		}

		sources, planIndices := dedupSources(plans)
		n := len(sources)

		queues := make([][]any, n)
		sourceCompleted := make([]bool, n)
		planDone := make([]bool, len(plans))

		var mu sync.Mutex
		done := false
		composite := NewCompositeDisposable()

		matchable := func(indices []int) bool {
			for _, idx := range indices {
				if len(queues[idx]) == 0 {
					return false
				}
			}
			return true
		}

		// drainLocked fires every plan it can, in declared order, re-scanning
		// from the top after each fire since a dequeue can make an
		// earlier-declared plan matchable on a shared source. It must run
		// with mu held and must never itself call downstream — results are
		// emitted by the caller after unlocking (§5 "MUST NOT hold locks
		// across calls to downstream observers").
		drainLocked := func() (results []any, finished bool) {
			for {
				fired := false
				for p, indices := range planIndices {
					if planDone[p] || !matchable(indices) {
						continue
					}
					vals := make([]any, len(indices))
					for j, idx := range indices {
						vals[j] = queues[idx][0]
						queues[idx] = queues[idx][1:]
					}
					results = append(results, plans[p].selector(vals))
					fired = true
					break
				}
				if !fired {
					break
				}
			}
			for p, indices := range planIndices {
				if planDone[p] {
					continue
				}
				for _, idx := range indices {
					if sourceCompleted[idx] && len(queues[idx]) == 0 {
						planDone[p] = true
						break
					}
				}
			}
			allDone := true
			for _, d := range planDone {
				if !d {
					allDone = false
					break
				}
			}
			return results, allDone
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
					sourceCompleted[i] = true
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

// dedupSources collapses the sources referenced across every plan's
// pattern down to one entry per distinct source, by identity (two
// Observable values that trace back to the same newObservable call share
// one entry), in first-seen order, and maps each plan's pattern onto
// indices into that collapsed slice.
func dedupSources(plans []Plan) (sources []Observable, planIndices [][]int) {
	indexOf := make(map[*observableID]int)
	planIndices = make([][]int, len(plans))
	for p, plan := range plans {
		indices := make([]int, len(plan.pattern.sources))
		for j, src := range plan.pattern.sources {
			idx, ok := indexOf[src.id]
			if !ok {
				idx = len(sources)
				indexOf[src.id] = idx
				sources = append(sources, src)
			}
			indices[j] = idx
		}
		planIndices[p] = indices
	}
	return sources, planIndices
}
