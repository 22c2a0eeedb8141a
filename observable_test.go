package rx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a tiny Observer sink used across tests to capture delivered
// events in order.
type recorder struct {
	values    []any
	err       error
	completed bool
}

func (r *recorder) observer() Observer {
	return NewObserver(
		func(v any) { r.values = append(r.values, v) },
		func(err error) { r.err = err },
		func() { r.completed = true },
	)
}

func TestJustEmitsEveryValueThenCompletes(t *testing.T) {
	r := &recorder{}
	Just(1, 2, 3).Subscribe(r.observer())

	assert.Equal(t, []any{1, 2, 3}, r.values)
	assert.True(t, r.completed)
	assert.NoError(t, r.err)
}

func TestEmptyCompletesOnly(t *testing.T) {
	r := &recorder{}
	Empty.Subscribe(r.observer())

	assert.Empty(t, r.values)
	assert.True(t, r.completed)
}

func TestDisposeStopsFurtherDelivery(t *testing.T) {
	sub := NewSubject()
	r := &recorder{}
	d := sub.AsObservable().Subscribe(r.observer())

	sub.Next(1)
	d.Dispose()
	sub.Next(2)

	assert.Equal(t, []any{1}, r.values)
}

func TestMapComposesWithItself(t *testing.T) {
	double := func(v any) any { return v.(int) * 2 }
	addOne := func(v any) any { return v.(int) + 1 }

	lhs := &recorder{}
	Just(1, 2, 3).Map(double).Map(addOne).Subscribe(lhs.observer())

	rhs := &recorder{}
	Just(1, 2, 3).Map(func(v any) any { return addOne(double(v)) }).Subscribe(rhs.observer())

	assert.Equal(t, rhs.values, lhs.values)
}

func TestSubscribeFuncsDefaultErrorHandlerPanics(t *testing.T) {
	prev := OnUnhandledError
	defer func() { OnUnhandledError = prev }()
	OnUnhandledError = func(err error) { panic(err) }

	require.Panics(t, func() {
		Throw(ErrTimeout).SubscribeFuncs(nil, nil, nil)
	})
}

func TestOnUnhandledErrorIsPluggable(t *testing.T) {
	prev := OnUnhandledError
	defer func() { OnUnhandledError = prev }()

	var got error
	OnUnhandledError = func(err error) { got = err }

	Throw(ErrTimeout).SubscribeFuncs(nil, nil, nil)
	assert.Equal(t, ErrTimeout, got)
}
