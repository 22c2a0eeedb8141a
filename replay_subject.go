package rx

import (
	"sync"
	"time"
)

// ReplayOption configures a ReplaySubject, following the functional-options
// convention used throughout the domain stack (§A "Configuration").
type ReplayOption func(*ReplaySubject)

// WithReplayWindow bounds replay to events recorded within the last d.
func WithReplayWindow(d time.Duration) ReplayOption {
	return func(r *ReplaySubject) { r.window = d }
}

// WithReplayBufferSize bounds replay to at most n most-recent events.
func WithReplayBufferSize(n int) ReplayOption {
	return func(r *ReplaySubject) { r.bufSize = n }
}

// WithReplayClock overrides the Clock used to timestamp recorded events,
// for deterministic tests of windowed replay.
func WithReplayClock(c Clock) ReplayOption {
	return func(r *ReplaySubject) { r.clock = c }
}

type replayItem struct {
	v  any
	at time.Time
}

// ReplaySubject is a Subject variant that additionally records events with
// timestamps (§3). On Subscribe it first replays the currently-eligible
// recorded events (those within the configured window and/or buffer size),
// then attaches the caller as a live subscriber.
type ReplaySubject struct {
	mu         sync.Mutex
	clock      Clock
	window     time.Duration
	bufSize    int
	buffer     []replayItem
	subs       []*subjectSub
	terminated bool
	terminal   Notification
	asObs      Observable
}

// NewReplaySubject creates a ReplaySubject configured by opts. With no
// options, the buffer is unbounded in both time and size.
func NewReplaySubject(opts ...ReplayOption) *ReplaySubject {
	r := &ReplaySubject{clock: RealClock}
	for _, opt := range opts {
		opt(r)
	}
	r.asObs = newObservable(r.Subscribe)
	return r
}

func (r *ReplaySubject) trim() {
	if r.window > 0 {
		cutoff := r.clock.Now().Add(-r.window)
		i := 0
		for i < len(r.buffer) && r.buffer[i].at.Before(cutoff) {
			i++
		}
		r.buffer = r.buffer[i:]
	}
	if r.bufSize > 0 && len(r.buffer) > r.bufSize {
		r.buffer = r.buffer[len(r.buffer)-r.bufSize:]
	}
}

// Next records v and broadcasts it to every live subscriber.
func (r *ReplaySubject) Next(v any) {
	r.mu.Lock()
	if r.terminated {
		r.mu.Unlock()
		return
	}
	r.buffer = append(r.buffer, replayItem{v: v, at: r.clock.Now()})
	r.trim()
	snapshot := append([]*subjectSub(nil), r.subs...)
	r.mu.Unlock()

	for _, sub := range snapshot {
		if !sub.removed.Load() {
			sub.obs.next(v)
		}
	}
}

func (r *ReplaySubject) terminate(n Notification) {
	r.mu.Lock()
	if r.terminated {
		r.mu.Unlock()
		return
	}
	r.terminated = true
	r.terminal = n
	snapshot := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, sub := range snapshot {
		if !sub.removed.Load() {
			n.Accept(sub.obs)
		}
	}
}

// Error terminates the ReplaySubject with an error.
func (r *ReplaySubject) Error(err error) { r.terminate(errorNotification(err)) }

// Complete terminates the ReplaySubject successfully.
func (r *ReplaySubject) Complete() { r.terminate(completeNotification()) }

// Subscribe replays the currently-eligible buffered events to obs, then (if
// the subject has not yet terminated) attaches obs as a live subscriber; if
// it has terminated, the recorded terminal event follows the replay. The
// live attachment is gated behind the replay: obs is registered in r.subs
// before unlocking (so no event is lost to a race between the snapshot and
// the attachment), but anything Next/terminate deliver through that
// registration is buffered behind the gate and only flushed to obs once the
// replay loop below has finished, so a concurrent Next can never interleave
// with (or outrun) the tail of this subscriber's own replay (§3, §5
// "Ordering").
func (r *ReplaySubject) Subscribe(obs Observer) Disposable {
	r.mu.Lock()
	r.trim()
	eligible := append([]replayItem(nil), r.buffer...)
	terminated := r.terminated
	terminal := r.terminal

	var entry *subjectSub
	var gate *replayGate
	if !terminated {
		gate = &replayGate{}
		entry = &subjectSub{obs: gate.observer(obs)}
		r.subs = append(r.subs, entry)
	}
	r.mu.Unlock()

	for _, it := range eligible {
		obs.next(it.v)
	}
	if terminated {
		terminal.Accept(obs)
		return Noop
	}
	gate.open(obs)

	return NewDisposable(func() {
		entry.removed.Store(true)
		r.mu.Lock()
		for i, sub := range r.subs {
			if sub == entry {
				r.subs = append(r.subs[:i], r.subs[i+1:]...)
				break
			}
		}
		r.mu.Unlock()
	})
}

// replayGate buffers events delivered to a freshly-registered subscriber
// while its replay is still in flight, then flushes them in order and
// switches to direct delivery once the replay finishes.
type replayGate struct {
	mu       sync.Mutex
	live     bool
	buffered []func(Observer)
}

func (g *replayGate) observer(obs Observer) Observer {
	deliver := func(apply func(Observer)) {
		g.mu.Lock()
		if !g.live {
			g.buffered = append(g.buffered, apply)
			g.mu.Unlock()
			return
		}
		g.mu.Unlock()
		apply(obs)
	}
	return Observer{
		Next:     func(v any) { deliver(func(o Observer) { o.next(v) }) },
		Error:    func(err error) { deliver(func(o Observer) { o.error(err) }) },
		Complete: func() { deliver(func(o Observer) { o.complete() }) },
	}
}

// open flushes whatever arrived during the replay, in arrival order, then
// lets every subsequent delivery through directly.
func (g *replayGate) open(obs Observer) {
	g.mu.Lock()
	pending := g.buffered
	g.buffered = nil
	g.live = true
	g.mu.Unlock()
	for _, apply := range pending {
		apply(obs)
	}
}

// AsObservable exposes the ReplaySubject's output side as a plain
// Observable. Every call returns the same Observable value (and so the
// same identity), which lets join.go recognize that two plans referencing
// the same ReplaySubject share one underlying source (§4.11).
func (r *ReplaySubject) AsObservable() Observable {
	return r.asObs
}
