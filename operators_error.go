package rx

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// CatchException substitutes a replacement Observable (built from the
// triggering error) for whatever the source would have done after erroring;
// a source that never errors passes through unchanged (§4.9).
func (o Observable) CatchException(handler func(error) Observable) Observable {
	return Create(func(downstream Observer) Disposable {
		current := NewAssignableDisposable()
		// The source's own disposable goes into first, so that a source which
		// errors synchronously inside subscribe cannot, on returning, replace
		// (and so dispose) the fallback subscription already held by current.
		first := NewAssignableDisposable()
		current.Set(first)
		first.Set(o.subscribe(Protect(Observer{
			Next: downstream.next,
			Error: func(err error) {
				current.Set(handler(err).subscribe(Protect(downstream)))
			},
			Complete: downstream.complete,
		})))
		return current
	})
}

// ContinueWith is CatchException specialised to a fixed fallback, ignoring
// the triggering error's value (§C "SUPPLEMENTED FEATURES").
func (o Observable) ContinueWith(fallback Observable) Observable {
	return o.CatchException(func(error) Observable { return fallback })
}

// OnErrorContinueWith swallows the error entirely and completes in its
// place, as opposed to substituting a real fallback stream (§C "SUPPLEMENTED
// FEATURES").
func (o Observable) OnErrorContinueWith() Observable {
	return o.CatchException(func(error) Observable { return Empty })
}

// Retry resubscribes to the source up to count additional times after an
// error, for up to count+1 total subscription attempts; a negative count
// means resubscribe forever. Once the retries are used up, the last error
// is forwarded as-is. This resolves §9's open question on retry(0) vs.
// retry(1) semantics in favor of the safer reading: retry(n) performs up to
// n additional subscriptions after the initial failing one, so retry(0) is
// exactly "no retries" (§4.9).
func (o Observable) Retry(count int) Observable {
	return Create(func(downstream Observer) Disposable {
		current := NewAssignableDisposable()
		attempts := 0
		var subscribeOnce func()
		subscribeOnce = func() {
			attempt := NewAssignableDisposable()
			current.Set(attempt)
			attempt.Set(o.subscribe(Protect(Observer{
				Next: downstream.next,
				Error: func(err error) {
					attempts++
					if count >= 0 && attempts > count {
						downstream.error(err)
						return
					}
					subscribeOnce()
				},
				Complete: downstream.complete,
			})))
		}
		subscribeOnce()
		return current
	})
}

// RetryWithBackoff resubscribes to the source after an error, waiting
// according to policy between attempts, until policy reports no more
// retries should be attempted (backoff.Stop) or the source succeeds to
// completion. A nil policy defaults to backoff.NewExponentialBackOff's
// standard curve (§4.9; grounded on cenkalti/backoff/v4, the retry library
// already pulled in for the domain stack per SPEC_FULL.md §B).
func (o Observable) RetryWithBackoff(policy backoff.BackOff, scheduler Scheduler) Observable {
	if policy == nil {
		policy = backoff.NewExponentialBackOff()
	}
	if scheduler == nil {
		scheduler = NewThread
	}
	return Create(func(downstream Observer) Disposable {
		current := NewAssignableDisposable()
		var lastErr error
		var subscribeOnce func()
		subscribeOnce = func() {
			// Each attempt's disposable goes into its own holder, so a source
			// that errors synchronously cannot, on returning, replace (and so
			// cancel) the retry just scheduled into current.
			attempt := NewAssignableDisposable()
			current.Set(attempt)
			attempt.Set(o.subscribe(Protect(Observer{
				Next: downstream.next,
				Error: func(err error) {
					lastErr = err
					wait := policy.NextBackOff()
					if wait == backoff.Stop {
						downstream.error(errRetryExhausted(lastErr))
						return
					}
					current.Set(scheduler.Run(func() {
						if wait > 0 {
							time.Sleep(wait)
						}
						subscribeOnce()
					}))
				},
				Complete: downstream.complete,
			})))
		}
		subscribeOnce()
		return current
	})
}
