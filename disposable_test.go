package rx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooleanDisposable(t *testing.T) {
	disposedInner := false
	b := NewBooleanDisposable(NewDisposable(func() { disposedInner = true }))
	require.False(t, b.IsDisposed())

	b.Dispose()
	assert.True(t, b.IsDisposed())
	assert.True(t, disposedInner)

	// second Dispose is a no-op, not a double-fire.
	disposedInner = false
	b.Dispose()
	assert.False(t, disposedInner)
}

func TestCompositeDisposableReverseOrder(t *testing.T) {
	var order []int
	c := NewCompositeDisposable(
		NewDisposable(func() { order = append(order, 1) }),
		NewDisposable(func() { order = append(order, 2) }),
		NewDisposable(func() { order = append(order, 3) }),
	)
	c.Dispose()
	assert.Equal(t, []int{3, 2, 1}, order)
	assert.True(t, c.IsDisposed())
}

func TestCompositeDisposableAggregatesPanics(t *testing.T) {
	c := NewCompositeDisposable(
		NewDisposable(func() { panic("boom-a") }),
		NewDisposable(func() { panic("boom-b") }),
	)
	require.Panics(t, func() { c.Dispose() })
}

func TestCompositeDisposableAddAfterDisposeFiresImmediately(t *testing.T) {
	c := NewCompositeDisposable()
	c.Dispose()

	fired := false
	c.Add(NewDisposable(func() { fired = true }))
	assert.True(t, fired)
}

func TestAssignableDisposableReplacesPrevious(t *testing.T) {
	a := NewAssignableDisposable()
	firstDisposed := false
	a.Set(NewDisposable(func() { firstDisposed = true }))
	assert.False(t, firstDisposed)

	secondDisposed := false
	a.Set(NewDisposable(func() { secondDisposed = true }))
	assert.True(t, firstDisposed)
	assert.False(t, secondDisposed)

	a.Dispose()
	assert.True(t, secondDisposed)
	assert.True(t, a.IsDisposed())
}

func TestAssignableDisposableBlocksAfterDispose(t *testing.T) {
	a := NewAssignableDisposable()
	a.Dispose()

	fired := false
	a.Set(NewDisposable(func() { fired = true }))
	assert.True(t, fired, "assignment after dispose must dispose its argument immediately")
}

func TestRefCountDisposableFiresOnlyAfterEveryRefReleased(t *testing.T) {
	fired := false
	r := NewRefCountDisposable(NewDisposable(func() { fired = true }))

	ref, err := r.AddRef()
	require.NoError(t, err)
	r.Dispose() // release the root; still one outstanding ref.
	assert.False(t, fired)

	ref.Dispose()
	assert.True(t, fired)
	assert.True(t, r.IsDisposed())
}

func TestRefCountDisposableAddRefAfterRootDisposedFailsEvenWithRefsOutstanding(t *testing.T) {
	fired := false
	r := NewRefCountDisposable(NewDisposable(func() { fired = true }))

	held, err := r.AddRef()
	require.NoError(t, err)
	r.Dispose() // root released; one outstanding ref keeps it armed, not fired.
	assert.False(t, fired)

	ref, err := r.AddRef()
	assert.Equal(t, Noop, ref)
	assert.Equal(t, ErrDisposed, err)

	held.Dispose()
	assert.True(t, fired)
}
