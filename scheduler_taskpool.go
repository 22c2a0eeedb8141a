package rx

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// TaskPoolScheduler dispatches work units across a fixed pool of worker
// goroutines, grounded on mindfulqumachine-go-streams' use of
// golang.org/x/sync/errgroup to supervise a worker pool (pkg/stream/
// execution.go, fusion.go) rather than the unbounded-goroutine style of
// NewThread.
type TaskPoolScheduler struct {
	tasks  chan func()
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	once   sync.Once
}

// NewTaskPoolScheduler starts a pool of workers goroutines (runtime.NumCPU()
// if workers <= 0) draining a shared task queue.
func NewTaskPoolScheduler(workers int) *TaskPoolScheduler {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)
	s := &TaskPoolScheduler{
		tasks:  make(chan func(), workers*2),
		ctx:    gctx,
		cancel: cancel,
		group:  group,
	}
	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case fn, ok := <-s.tasks:
					if !ok {
						return nil
					}
					fn()
				}
			}
		})
	}
	return s
}

func (s *TaskPoolScheduler) Run(fn func()) Disposable {
	d := NewBooleanDisposable(nil)
	task := func() {
		if !d.IsDisposed() {
			fn()
		}
	}
	select {
	case s.tasks <- task:
	case <-s.ctx.Done():
	}
	return d
}

// Close stops accepting new work and shuts down the worker pool. Workers
// finish the task they are currently running but do not drain the queue.
func (s *TaskPoolScheduler) Close() {
	s.once.Do(func() {
		s.cancel()
	})
}
