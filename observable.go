package rx

// SubscribeFunc is the subscribe action behind every Observable: given a
// (protocol-gated) downstream Observer, it starts producing events and
// returns a Disposable that cancels that production. Per §3's invariant, no
// activity happens before Subscribe is called.
type SubscribeFunc func(Observer) Disposable

// Observable is a lazy stream specification (§3). Subscribing is the only
// mechanism that allocates state; two subscriptions to the same Observable
// value produce two independent runs unless the Observable is a Subject or
// a ConnectableObservable.
type Observable struct {
	subscribe SubscribeFunc

	// id distinguishes this particular construction from any other, even one
	// that is logically identical (two separate Just(1) calls). It exists so
	// join.go can key a source into its shared per-source queue: Observable
	// holds a func field and so is neither comparable nor map-keyable on its
	// own, but this pointer, minted once per newObservable call and carried
	// along by copies of the same value, is.
	id *observableID
}

// observableID has a non-zero size so that every new(observableID) is a
// distinct address; pointers to distinct zero-size values may compare equal.
type observableID struct{ _ byte }

// newObservable is the single constructor every Observable-producing call
// site routes through, so that copying an Observable value preserves its
// identity token while every distinct construction gets a fresh one.
func newObservable(subscribe SubscribeFunc) Observable {
	return Observable{subscribe: subscribe, id: new(observableID)}
}

// Create builds an Observable directly from a subscribe function. The
// function receives an Observer that already enforces the protocol gate, so
// implementations are free to call Next/Error/Complete without worrying
// about ordering or re-entrancy, but they must still not call Next after a
// terminal event (doing so is simply ignored, not a compile-time error).
func Create(subscribe func(Observer) Disposable) Observable {
	return newObservable(subscribe)
}

// Subscribe attaches obs to o and starts the stream. The Observer handed to
// the underlying producer is always protocol-gated (§4.1); obs itself is
// also gated so that a double-terminal bug anywhere in the operator chain
// can never reach application code twice.
func (o Observable) Subscribe(obs Observer) Disposable {
	if o.subscribe == nil {
		obs.complete()
		return Noop
	}
	return o.subscribe(Protect(obs))
}

// SubscribeFuncs is the tuple-of-callbacks Subscribe overload from §6. A nil
// onError installs the default handler, which re-raises the error by
// panicking on the delivering goroutine — per §6, "libraries SHOULD require
// explicit onError in production code", so callers are expected to pass one.
func (o Observable) SubscribeFuncs(onNext func(any), onError func(error), onComplete func()) Disposable {
	if onError == nil {
		onError = defaultErrorHandler
	}
	return o.Subscribe(NewObserver(onNext, onError, onComplete))
}

// OnUnhandledError is invoked by SubscribeFuncs when a caller omits onError
// and the stream actually errors. The default panics on the delivering
// goroutine — per §6, "libraries SHOULD require explicit onError in
// production code" — but library consumers may replace it with their own
// logger/metrics hook instead of crashing the process (§A "Logging").
var OnUnhandledError = func(err error) { panic(err) }

func defaultErrorHandler(err error) {
	OnUnhandledError(err)
}

// lift is the general operator-construction helper: it builds a new
// Observable whose subscribe function constructs a source-facing Observer
// (via makeSourceObserver, given the already-gated downstream Observer) and
// subscribes that to source, additionally gating the source-facing Observer
// itself so a misbehaving source cannot violate the grammar the operator's
// own logic depends on (§4.1).
func lift(source Observable, makeSourceObserver func(downstream Observer) Observer) Observable {
	return newObservable(func(downstream Observer) Disposable {
		sourceObserver := Protect(makeSourceObserver(downstream))
		return source.subscribe(sourceObserver)
	})
}

// Lift is the public form of lift, for callers who want to write their own
// operators outside this package using the same protocol guarantees.
func (o Observable) Lift(makeSourceObserver func(downstream Observer) Observer) Observable {
	return lift(o, makeSourceObserver)
}
