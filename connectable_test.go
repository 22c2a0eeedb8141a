package rx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDefersUntilConnect(t *testing.T) {
	source := NewSubject()
	c := Publish(source.AsObservable())

	early := &recorder{}
	c.Subscribe(early.observer())

	// nothing has happened yet: no Connect call means no upstream
	// subscription, so source.Next would have nowhere to go even though we
	// don't exercise that here.
	assert.Empty(t, early.values)

	conn := c.Connect()
	defer conn.Dispose()

	late := &recorder{}
	c.Subscribe(late.observer())

	source.Next(1)

	assert.Equal(t, []any{1}, early.values, "subscriber attached before connect sees the first value")
	assert.Equal(t, []any{1}, late.values, "subscriber attached just after connect sees the same first value")
}

func TestConnectIsIdempotentUntilDisconnect(t *testing.T) {
	source := NewSubject()
	c := Replay(source.AsObservable())

	d1 := c.Connect()
	d2 := c.Connect()
	assert.Equal(t, d1, d2)

	c.Disconnect()
	d3 := c.Connect()
	assert.NotEqual(t, d1, d3)
}

func TestRefCountConnectsOnFirstAndDisconnectsOnLast(t *testing.T) {
	subscribes := 0
	source := Create(func(obs Observer) Disposable {
		subscribes++
		obs.next("hello")
		return NewDisposable(func() {})
	})

	shared := RefCount(Publish(source))

	a := &recorder{}
	da := shared.Subscribe(a.observer())
	require.Equal(t, 1, subscribes)

	b := &recorder{}
	db := shared.Subscribe(b.observer())
	assert.Equal(t, 1, subscribes, "second subscriber must not trigger a second upstream subscription")

	da.Dispose()
	assert.Equal(t, 1, subscribes)

	db.Dispose()

	c := &recorder{}
	shared.Subscribe(c.observer())
	assert.Equal(t, 2, subscribes, "a subscriber after the last one disconnected triggers a fresh connection")
}
