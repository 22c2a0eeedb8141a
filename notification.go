package rx

import "fmt"

// NotificationKind tags the three possible observer events so they can be
// reified as values by Materialize/Dematerialize (§3).
type NotificationKind int

const (
	OnNext NotificationKind = iota
	OnComplete
	OnError
)

func (k NotificationKind) String() string {
	switch k {
	case OnNext:
		return "next"
	case OnComplete:
		return "complete"
	case OnError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is a tagged value reifying one observer event (§3). Value is
// only meaningful when Kind is OnNext; Err is only meaningful when Kind is
// OnError.
type Notification struct {
	Kind  NotificationKind
	Value any
	Err   error
}

func nextNotification(v any) Notification     { return Notification{Kind: OnNext, Value: v} }
func completeNotification() Notification      { return Notification{Kind: OnComplete} }
func errorNotification(err error) Notification { return Notification{Kind: OnError, Err: err} }

// IsNext, IsComplete and IsError report the Notification's Kind.
func (n Notification) IsNext() bool     { return n.Kind == OnNext }
func (n Notification) IsComplete() bool { return n.Kind == OnComplete }
func (n Notification) IsError() bool    { return n.Kind == OnError }

// Accept replays the Notification onto obs, i.e. dematerializes a single
// value.
func (n Notification) Accept(obs Observer) {
	switch n.Kind {
	case OnNext:
		obs.next(n.Value)
	case OnComplete:
		obs.complete()
	case OnError:
		obs.error(n.Err)
	}
}

// Materialize converts an Observable<T> into an Observable<Notification>:
// every next/complete/error event becomes a value, and the resulting stream
// itself always completes normally once the source has produced its one
// terminal event (§4.10, §3).
func (o Observable) Materialize() Observable {
	return lift(o, func(downstream Observer) Observer {
		return Observer{
			Next: func(v any) {
				downstream.next(nextNotification(v))
			},
			Error: func(err error) {
				downstream.next(errorNotification(err))
				downstream.complete()
			},
			Complete: func() {
				downstream.next(completeNotification())
				downstream.complete()
			},
		}
	})
}

// Dematerialize is the inverse of Materialize: the source must emit
// Notification values, and each is replayed as the event it represents
// (§4.10, §8 property 8: materialize ∘ dematerialize ≡ identity on
// well-behaved sources).
func (o Observable) Dematerialize() Observable {
	return lift(o, func(downstream Observer) Observer {
		return Observer{
			Next: func(v any) {
				n, ok := v.(Notification)
				if !ok {
					downstream.error(newError(KindUser, "dematerialize", errNotANotification))
					return
				}
				n.Accept(downstream)
			},
			Error:    downstream.error,
			Complete: downstream.complete,
		}
	})
}

var errNotANotification = fmt.Errorf("dematerialize: value is not a Notification")
