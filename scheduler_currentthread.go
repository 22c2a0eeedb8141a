package rx

import "sync"

// CurrentThreadScheduler enqueues work onto a FIFO drained by an explicit
// call to Work (§4.12). Run from any goroutine delivers to the same queue;
// nothing runs until Work is called, which makes this the basis for
// deterministic tests of time operators when paired with a VirtualClock
// (§9 "Time source").
type CurrentThreadScheduler struct {
	mu    sync.Mutex
	queue []func()
}

// NewCurrentThreadScheduler creates an empty CurrentThreadScheduler.
func NewCurrentThreadScheduler() *CurrentThreadScheduler {
	return &CurrentThreadScheduler{}
}

func (s *CurrentThreadScheduler) Run(fn func()) Disposable {
	d := NewBooleanDisposable(nil)
	s.mu.Lock()
	s.queue = append(s.queue, func() {
		if !d.IsDisposed() {
			fn()
		}
	})
	s.mu.Unlock()
	return d
}

// Work drains the queue until it is empty, running each item in order. A
// running item may itself enqueue more work (e.g. a recursively-scheduled
// interval step), which Work also drains before returning. It returns how
// many items ran.
func (s *CurrentThreadScheduler) Work() int {
	n := 0
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return n
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		fn()
		n++
	}
}

// Pending reports how many work items are currently queued.
func (s *CurrentThreadScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
