package rx

// Iterator pulls values out of a push-based Observable one at a time,
// blocking Next until the source produces another value or terminates.
// This is the generic "collect to future"-style bridge the spec calls for
// in place of a dedicated fiber/channel bridge type (§4.10, §4.7).
type Iterator struct {
	values     chan any
	errs       chan error
	done       chan struct{}
	disposable Disposable
	cur        any
	err        error
}

// ToIterator subscribes immediately and returns an Iterator over the
// resulting values (§4.10). Subscribing happens on its own goroutine so a
// cold, synchronous source (one that emits from within Subscribe itself)
// cannot deadlock sending its first value before anyone has called Next.
func (o Observable) ToIterator() *Iterator {
	it := &Iterator{
		values: make(chan any),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	assignable := NewAssignableDisposable()
	it.disposable = assignable
	go func() {
		assignable.Set(o.Subscribe(NewObserver(
			func(v any) { it.values <- v },
			func(err error) {
				it.errs <- err
				close(it.done)
			},
			func() { close(it.done) },
		)))
	}()
	return it
}

// Next advances the iterator, returning false once the source has
// completed or errored (check Err to distinguish the two).
func (it *Iterator) Next() bool {
	select {
	case v, ok := <-it.values:
		if !ok {
			return false
		}
		it.cur = v
		return true
	case err := <-it.errs:
		it.err = err
		return false
	case <-it.done:
		// Error sends on errs before closing done, so both may be ready at
		// once; pick up the error rather than losing it to select's choice.
		select {
		case err := <-it.errs:
			it.err = err
		default:
		}
		return false
	}
}

// Value returns the value most recently produced by Next.
func (it *Iterator) Value() any { return it.cur }

// Err returns the error that stopped iteration, if any.
func (it *Iterator) Err() error { return it.err }

// Dispose cancels the underlying subscription.
func (it *Iterator) Dispose() { it.disposable.Dispose() }

// Future resolves to the last value an Observable produced, once it
// terminates. It is the spec's replacement for a dedicated fiber/future
// bridge type: any Observable can be turned into one with ToFuture (§4.7).
type Future struct {
	done  chan struct{}
	value any
	err   error
}

// ToFuture subscribes on the task scheduler (§4.10) and returns immediately;
// the returned Future resolves to the last value seen, or to
// ErrEmptySequence if the source completed without ever emitting one (§4.7).
// Subscribing off the caller's own goroutine means a source that does
// synchronous blocking work from within Subscribe cannot block ToFuture
// itself — only Wait blocks, and only the caller that chooses to call it.
func (o Observable) ToFuture() *Future {
	f := &Future{done: make(chan struct{})}
	var last any
	hasValue := false
	NewThread.Run(func() {
		o.Subscribe(NewObserver(
			func(v any) {
				last = v
				hasValue = true
			},
			func(err error) {
				f.err = err
				close(f.done)
			},
			func() {
				if hasValue {
					f.value = last
				} else {
					f.err = ErrEmptySequence
				}
				close(f.done)
			},
		))
	})
	return f
}

// Wait blocks until the Future resolves and returns its value or error.
func (f *Future) Wait() (any, error) {
	<-f.done
	return f.value, f.err
}

// Wait subscribes to o and blocks until it terminates, returning its last
// value (§4.7).
func Wait(o Observable) (any, error) {
	return o.ToFuture().Wait()
}

// ForEach subscribes to o and blocks until it terminates, invoking onNext
// synchronously for every value in arrival order. It returns the source's
// error, if any (§4.10).
func (o Observable) ForEach(onNext func(any)) error {
	done := make(chan struct{})
	var err error
	o.Subscribe(NewObserver(
		onNext,
		func(e error) {
			err = e
			close(done)
		},
		func() { close(done) },
	))
	<-done
	return err
}

// ToSlice collects every value into a slice, in arrival order (§C
// "SUPPLEMENTED FEATURES").
func (o Observable) ToSlice() ([]any, error) {
	var result []any
	err := o.ForEach(func(v any) { result = append(result, v) })
	return result, err
}

// ToMap collects every value into a map keyed by keyFn; a repeated key
// keeps the most recently arrived value (§C "SUPPLEMENTED FEATURES").
func (o Observable) ToMap(keyFn func(any) any) (map[any]any, error) {
	result := make(map[any]any)
	err := o.ForEach(func(v any) { result[keyFn(v)] = v })
	return result, err
}
