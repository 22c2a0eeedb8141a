package rx

import "sync/atomic"
import "sync"

// hub is satisfied by both Subject and ReplaySubject: it is the minimal
// surface a ConnectableObservable needs from its multicast core (§4.7).
type hub interface {
	Subscribe(Observer) Disposable
	Next(any)
	Error(error)
	Complete()
}

type subjectSub struct {
	obs     Observer
	removed atomic.Bool
}

// Subject is a multicast hub: simultaneously an Observer (via Next/Error/
// Complete) and an Observable (via Subscribe/AsObservable), per §3. Once
// terminated it stays terminated: further Next calls are ignored and any
// later Subscribe immediately receives the recorded terminal event.
type Subject struct {
	mu         sync.Mutex
	subs       []*subjectSub
	terminated bool
	terminal   Notification
	asObs      Observable
}

// NewSubject creates an empty, live Subject.
func NewSubject() *Subject {
	s := &Subject{}
	s.asObs = newObservable(s.Subscribe)
	return s
}

// Next broadcasts v to every currently-subscribed observer. Dispatch
// iterates a snapshot of the subscriber list taken under lock, then calls
// out to each observer without holding the lock (§5 "deadlock avoidance"),
// so subscriptions added or removed mid-dispatch cannot corrupt the
// iteration (§3, §9).
func (s *Subject) Next(v any) {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return
	}
	snapshot := append([]*subjectSub(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range snapshot {
		if !sub.removed.Load() {
			sub.obs.next(v)
		}
	}
}

func (s *Subject) terminate(n Notification) {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return
	}
	s.terminated = true
	s.terminal = n
	snapshot := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range snapshot {
		if !sub.removed.Load() {
			n.Accept(sub.obs)
		}
	}
}

// Error terminates the Subject with an error; every current and future
// subscriber receives it exactly once.
func (s *Subject) Error(err error) { s.terminate(errorNotification(err)) }

// Complete terminates the Subject successfully.
func (s *Subject) Complete() { s.terminate(completeNotification()) }

// Subscribe attaches obs as a live subscriber. If the Subject has already
// terminated, obs immediately receives the recorded terminal event and the
// returned Disposable is a no-op.
func (s *Subject) Subscribe(obs Observer) Disposable {
	s.mu.Lock()
	if s.terminated {
		terminal := s.terminal
		s.mu.Unlock()
		terminal.Accept(obs)
		return Noop
	}
	entry := &subjectSub{obs: obs}
	s.subs = append(s.subs, entry)
	s.mu.Unlock()

	return NewDisposable(func() {
		entry.removed.Store(true)
		s.mu.Lock()
		for i, sub := range s.subs {
			if sub == entry {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	})
}

// AsObservable exposes the Subject's output side as a plain Observable.
// Every call returns the same Observable value (and so the same identity),
// which lets join.go recognize that two plans referencing the same Subject
// share one underlying source (§4.11).
func (s *Subject) AsObservable() Observable {
	return s.asObs
}
