package rx

import "sync"

// ConnectableObservable wraps (source, subject, connection) per §3: any
// number of subscribers can attach before Connect, but no upstream activity
// happens until Connect is called.
type ConnectableObservable struct {
	mu         sync.Mutex
	source     Observable
	subject    hub
	connected  bool
	disposable Disposable
	asObs      Observable
}

func newConnectable(source Observable, subject hub) *ConnectableObservable {
	c := &ConnectableObservable{source: source, subject: subject}
	c.asObs = newObservable(c.Subscribe)
	return c
}

// Publish wraps source with a plain Subject: subscribers attached before
// Connect see the same first value as one attached just after, since none
// of them receive anything until the underlying source is actually
// subscribed to (§4.7, §8 property 14).
func Publish(source Observable) *ConnectableObservable {
	return newConnectable(source, NewSubject())
}

// Replay wraps source with a ReplaySubject configured by opts: late
// subscribers (including ones attached after Connect) receive the buffered
// history before joining live (§4.7).
func Replay(source Observable, opts ...ReplayOption) *ConnectableObservable {
	return newConnectable(source, NewReplaySubject(opts...))
}

// Subscribe attaches obs to the underlying subject without triggering
// Connect.
func (c *ConnectableObservable) Subscribe(obs Observer) Disposable {
	return c.subject.Subscribe(obs)
}

// AsObservable exposes the ConnectableObservable's subscriber side as a
// plain Observable (Subscribe only, no Connect/Disconnect).
func (c *ConnectableObservable) AsObservable() Observable {
	return c.asObs
}

// Connect subscribes the underlying subject to the source, returning the
// resulting Disposable. Repeated calls without an intervening Disconnect
// are a no-op and return the same Disposable (§3, §4.7).
func (c *ConnectableObservable) Connect() Disposable {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return c.disposable
	}
	c.connected = true
	c.disposable = c.source.Subscribe(Observer{
		Next:     c.subject.Next,
		Error:    c.subject.Error,
		Complete: c.subject.Complete,
	})
	return c.disposable
}

// Disconnect disposes the current connection, if any, and allows a future
// Connect to start a fresh one.
func (c *ConnectableObservable) Disconnect() {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	d := c.disposable
	c.disposable = nil
	c.mu.Unlock()
	if d != nil {
		d.Dispose()
	}
}

// RefCount turns a ConnectableObservable into a plain, self-managing
// Observable: the first subscriber triggers Connect, and the last
// subscriber's disposal triggers Disconnect (§4.7).
//
// The actual fire-on-last-release decision is delegated to a
// RefCountDisposable (§4.2's "RefCounted" variant) rather than a bare
// decrementing counter. A RefCountDisposable is one-shot, though — once its
// root is released and every reference drains, it is permanently fired and
// cannot be reused — while a connection can cycle through connect/disconnect
// indefinitely as subscribers come and go. So a plain counter still decides
// *when* a fresh cycle begins (allocating a new RefCountDisposable and
// calling Connect); what it no longer decides is whether that cycle's
// Disconnect actually fires.
func RefCount(c *ConnectableObservable) Observable {
	var mu sync.Mutex
	count := 0
	var cycle *RefCountDisposable

	return newObservable(func(downstream Observer) Disposable {
		mu.Lock()
		count++
		first := count == 1
		if first {
			cycle = NewRefCountDisposable(NewDisposable(c.Disconnect))
		}
		current := cycle
		mu.Unlock()

		ref, _ := current.AddRef()

		// Attach to the subject before Connect so a cold, synchronous source
		// (one that emits from within Subscribe itself) cannot deliver its
		// first value before this subscriber is registered to receive it.
		sub := c.Subscribe(downstream)
		if first {
			c.Connect()
		}
		return NewDisposable(func() {
			sub.Dispose()
			ref.Dispose()
			mu.Lock()
			count--
			last := count == 0
			mu.Unlock()
			if last {
				current.Dispose()
			}
		})
	})
}
