package rx

import "sync"

// ObserveOn returns an Observable that delivers the same events as o, but
// with each Next/Error/Complete call dispatched through s instead of
// running on the producing goroutine (§4.12). Order is preserved: events
// are drained from a single FIFO one at a time, so even a scheduler that
// runs work on multiple goroutines (TaskPoolScheduler) cannot reorder a
// single subscription's events on the receiving side (§5 "Ordering").
func (o Observable) ObserveOn(s Scheduler) Observable {
	return newObservable(func(downstream Observer) Disposable {
		drain := newSerialDrain(s)
		upstream := o.subscribe(Observer{
			Next: func(v any) {
				drain.enqueue(func() { downstream.next(v) })
			},
			Error: func(err error) {
				drain.enqueue(func() { downstream.error(err) })
			},
			Complete: func() {
				drain.enqueue(func() { downstream.complete() })
			},
		})
		return upstream
	})
}

// SubscribeOn returns an Observable that schedules the Subscribe call
// itself onto s, moving source setup (including any blocking I/O a source
// performs while subscribing) off the caller's goroutine (§4.12).
func (o Observable) SubscribeOn(s Scheduler) Observable {
	return newObservable(func(downstream Observer) Disposable {
		inner := NewAssignableDisposable()
		scheduling := s.Run(func() {
			inner.Set(o.subscribe(downstream))
		})
		return NewCompositeDisposable(scheduling, inner)
	})
}

// serialDrain guarantees FIFO, one-at-a-time execution of enqueued tasks on
// top of a Scheduler that may itself be concurrent.
type serialDrain struct {
	s        Scheduler
	mu       sync.Mutex
	queue    []func()
	draining bool
}

func newSerialDrain(s Scheduler) *serialDrain {
	return &serialDrain{s: s}
}

func (d *serialDrain) enqueue(task func()) {
	d.mu.Lock()
	d.queue = append(d.queue, task)
	start := !d.draining
	d.draining = true
	d.mu.Unlock()
	if start {
		d.s.Run(d.drainOnce)
	}
}

func (d *serialDrain) drainOnce() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.draining = false
			d.mu.Unlock()
			return
		}
		task := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()
		task()
	}
}
