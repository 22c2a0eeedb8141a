package rx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaterializeDematerializeRoundTrip(t *testing.T) {
	r := &recorder{}
	Just(1, 2, 3).Materialize().Dematerialize().Subscribe(r.observer())

	assert.Equal(t, []any{1, 2, 3}, r.values)
	assert.True(t, r.completed)
}

func TestMaterializeReifiesError(t *testing.T) {
	boom := errors.New("boom")
	r := &recorder{}
	Throw(boom).Materialize().Subscribe(r.observer())

	require_ := assert.New(t)
	require_.Len(r.values, 1)
	n := r.values[0].(Notification)
	require_.True(n.IsError())
	require_.Equal(boom, n.Err)
	require_.True(r.completed, "materialize always completes normally")
}

func TestDematerializeRejectsNonNotificationValues(t *testing.T) {
	r := &recorder{}
	Just(42).Dematerialize().Subscribe(r.observer())

	assert.Error(t, r.err)
}
