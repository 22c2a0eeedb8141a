package rx

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImmediateRunsSynchronously(t *testing.T) {
	ran := false
	Immediate.Run(func() { ran = true })
	assert.True(t, ran)
}

func TestCurrentThreadSchedulerDeterministicFIFO(t *testing.T) {
	s := NewCurrentThreadScheduler()
	var order []int
	s.Run(func() { order = append(order, 1) })
	s.Run(func() { order = append(order, 2) })
	s.Run(func() { order = append(order, 3) })

	assert.Equal(t, 3, s.Pending())
	n := s.Work()
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, 0, s.Pending())
}

func TestFromIterableOnCurrentThreadIsFullyDeterministic(t *testing.T) {
	s := NewCurrentThreadScheduler()
	r := &recorder{}
	FromIterable([]any{1, 2, 3}, s).Subscribe(r.observer())

	// nothing runs until Work drains the queue.
	assert.Empty(t, r.values)
	s.Work()

	assert.Equal(t, []any{1, 2, 3}, r.values)
	assert.True(t, r.completed)
}

func TestNewThreadSchedulerRunsOffCallingGoroutine(t *testing.T) {
	done := make(chan struct{})
	NewThread.Run(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NewThread did not run the scheduled work")
	}
}

func TestTaskPoolSchedulerFansOutAcrossWorkers(t *testing.T) {
	pool := NewTaskPoolScheduler(4)
	defer pool.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[int]bool{}
	wg.Add(8)
	for i := 0; i < 8; i++ {
		i := i
		pool.Run(func() {
			mu.Lock()
			seen[i] = true
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()
	assert.Len(t, seen, 8)
}

func TestRunRecursiveStopsOnDispose(t *testing.T) {
	s := NewCurrentThreadScheduler()
	count := 0
	d := RunRecursive(s, func(self func()) {
		count++
		if count >= 10 {
			return
		}
		self()
	})
	require.False(t, d.IsDisposed())
	s.Work()
	assert.Equal(t, 10, count)
}

func TestObserveOnPreservesOrderUnderConcurrentScheduler(t *testing.T) {
	source := Just(1, 2, 3, 4, 5)
	pool := NewTaskPoolScheduler(4)
	defer pool.Close()

	r := &recorder{}
	done := make(chan struct{})
	source.ObserveOn(pool).SubscribeFuncs(
		func(v any) { r.values = append(r.values, v) },
		func(err error) { close(done) },
		func() { close(done) },
	)
	<-done

	assert.Equal(t, []any{1, 2, 3, 4, 5}, r.values)
}
