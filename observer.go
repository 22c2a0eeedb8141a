package rx

import "sync"

// Observer is a sink accepting next/complete/error, per §3. Any of the
// three fields may be left nil, in which case that event is silently
// dropped for this particular sink (the zero value of Observer is a valid,
// inert observer).
//
// A well-behaved Observer serializes its own calls (§3 invariant iii). Protect
// enforces the terminal part of the grammar regardless of what the upstream
// source does; it does not serialize concurrent calls.
type Observer struct {
	Next     func(v any)
	Error    func(err error)
	Complete func()
}

// NewObserver builds an Observer from the three callback forms accepted by
// the public Subscribe overloads (§6): onComplete and onError may be nil.
func NewObserver(onNext func(any), onError func(error), onComplete func()) Observer {
	return Observer{Next: onNext, Error: onError, Complete: onComplete}
}

func (o Observer) next(v any) {
	if o.Next != nil {
		o.Next(v)
	}
}

func (o Observer) error(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

func (o Observer) complete() {
	if o.Complete != nil {
		o.Complete()
	}
}

// Protect wraps an Observer with the protocol gate described in §4.1: a
// terminated flag, checked and set under a lock on entry to all three
// methods, so no event is ever delivered after a terminal one, and a recover
// that turns a panic inside the downstream Next into a single downstream
// Error instead of crashing the producing goroutine. The lock is released
// before the downstream observer is called, so concurrent Next calls from
// different goroutines are not serialized, and a panic inside the
// downstream Error or Complete is not recovered. Operators
// wrap every observer they hand to an upstream source with Protect so the
// grammar holds even when that source misbehaves.
func Protect(downstream Observer) Observer {
	g := &gate{downstream: downstream}
	return Observer{Next: g.next, Error: g.error, Complete: g.complete}
}

type gate struct {
	mu          sync.Mutex
	terminated  bool
	downstream  Observer
}

func (g *gate) next(v any) {
	g.mu.Lock()
	if g.terminated {
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()

	if err := g.callNext(v); err != nil {
		g.error(err)
	}
}

// callNext invokes the downstream Next outside the lock (§5 "deadlock
// avoidance") and converts a panic raised by it into an error instead of
// propagating the panic, per §4.1's "exception thrown from user-supplied
// next becomes a downstream error" clause.
func (g *gate) callNext(v any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(KindUser, "next", errAsError(r))
		}
	}()
	g.downstream.next(v)
	return nil
}

func (g *gate) error(err error) {
	g.mu.Lock()
	if g.terminated {
		g.mu.Unlock()
		return
	}
	g.terminated = true
	g.mu.Unlock()
	g.downstream.error(err)
}

func (g *gate) complete() {
	g.mu.Lock()
	if g.terminated {
		g.mu.Unlock()
		return
	}
	g.terminated = true
	g.mu.Unlock()
	g.downstream.complete()
}
