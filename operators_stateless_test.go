package rx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1: range(0, 5).filter(even).map(x10) -> [0, 20, 40] then complete.
func TestScenarioS1FilterThenMap(t *testing.T) {
	r := &recorder{}
	Range(0, 5, 1).
		Filter(func(v any) bool { return v.(int)%2 == 0 }).
		Map(func(v any) any { return v.(int) * 10 }).
		Subscribe(r.observer())

	assert.Equal(t, []any{0, 20, 40}, r.values)
	assert.True(t, r.completed)
}

func TestTakeUnsubscribesUpstreamOnceSatisfied(t *testing.T) {
	subscriptions := 0
	source := Create(func(obs Observer) Disposable {
		subscriptions++
		for i := 0; i < 100; i++ {
			obs.next(i)
		}
		obs.complete()
		return Noop
	})

	r := &recorder{}
	source.Take(3).Subscribe(r.observer())

	assert.Equal(t, []any{0, 1, 2}, r.values)
	assert.True(t, r.completed)
	assert.Equal(t, 1, subscriptions)
}

func TestTakeZeroIsEmpty(t *testing.T) {
	r := &recorder{}
	Just(1, 2, 3).Take(0).Subscribe(r.observer())
	assert.Empty(t, r.values)
	assert.True(t, r.completed)
}

func TestSkipDropsLeadingValues(t *testing.T) {
	r := &recorder{}
	Just(1, 2, 3, 4).Skip(2).Subscribe(r.observer())
	assert.Equal(t, []any{3, 4}, r.values)
}

func TestTakeWhileStopsBeforeFirstFailure(t *testing.T) {
	r := &recorder{}
	Just(1, 2, 3, 4, 1).TakeWhile(func(v any) bool { return v.(int) < 3 }).Subscribe(r.observer())
	assert.Equal(t, []any{1, 2}, r.values)
	assert.True(t, r.completed)
}

func TestSkipWhileIncludesFirstFailure(t *testing.T) {
	r := &recorder{}
	Just(1, 2, 3, 4).SkipWhile(func(v any) bool { return v.(int) < 3 }).Subscribe(r.observer())
	assert.Equal(t, []any{3, 4}, r.values)
}

func TestTakeLastBuffersTrailingValues(t *testing.T) {
	r := &recorder{}
	Just(1, 2, 3, 4, 5).TakeLast(2).Subscribe(r.observer())
	assert.Equal(t, []any{4, 5}, r.values)
}

func TestSkipLastStreamsThePrefix(t *testing.T) {
	r := &recorder{}
	Just(1, 2, 3, 4, 5).SkipLast(2).Subscribe(r.observer())
	assert.Equal(t, []any{1, 2, 3}, r.values)
}

func TestDistinctDropsRepeats(t *testing.T) {
	r := &recorder{}
	Just(1, 2, 1, 3, 2).Distinct().Subscribe(r.observer())
	assert.Equal(t, []any{1, 2, 3}, r.values)
}

func TestDistinctUntilChangedOnlyComparesNeighbours(t *testing.T) {
	r := &recorder{}
	Just(1, 1, 2, 2, 1).DistinctUntilChanged().Subscribe(r.observer())
	assert.Equal(t, []any{1, 2, 1}, r.values)
}

func TestIgnoreElementsKeepsTerminal(t *testing.T) {
	r := &recorder{}
	Just(1, 2, 3).IgnoreElements().Subscribe(r.observer())
	assert.Empty(t, r.values)
	assert.True(t, r.completed)
}

func TestOfTypeFiltersByRuntimeType(t *testing.T) {
	r := &recorder{}
	OfType[int](Just(1, "two", 3, "four")).Subscribe(r.observer())
	assert.Equal(t, []any{1, 3}, r.values)
}

// First on a source that completes without a value delivers ErrEmptySequence.
func TestFirstOnEmptyIsErrEmptySequence(t *testing.T) {
	r := &recorder{}
	Empty.First().Subscribe(r.observer())
	assert.Equal(t, ErrEmptySequence, r.err)
}

func TestFirstUnsubscribesAfterOneValue(t *testing.T) {
	subscriptions := 0
	source := Create(func(obs Observer) Disposable {
		subscriptions++
		obs.next(1)
		obs.next(2)
		obs.complete()
		return Noop
	})
	r := &recorder{}
	source.First().Subscribe(r.observer())
	assert.Equal(t, []any{1}, r.values)
}

func TestLastEmitsFinalValue(t *testing.T) {
	r := &recorder{}
	Just(1, 2, 3).Last().Subscribe(r.observer())
	assert.Equal(t, []any{3}, r.values)
}

func TestElementAtOutOfRange(t *testing.T) {
	r := &recorder{}
	Just(1, 2).ElementAt(5).Subscribe(r.observer())
	assert.Equal(t, ErrOutOfRange, r.err)
}

func TestDoOnNextTapsWithoutAltering(t *testing.T) {
	var seen []any
	r := &recorder{}
	Just(1, 2, 3).DoOnNext(func(v any) { seen = append(seen, v) }).Subscribe(r.observer())
	assert.Equal(t, []any{1, 2, 3}, seen)
	assert.Equal(t, []any{1, 2, 3}, r.values)
}

func TestDoRunsAllThreeHooks(t *testing.T) {
	var nextSeen []any
	completed := false
	r := &recorder{}
	Just(1, 2).Do(
		func(v any) { nextSeen = append(nextSeen, v) },
		nil,
		func() { completed = true },
	).Subscribe(r.observer())

	require.Equal(t, []any{1, 2}, nextSeen)
	assert.True(t, completed)
	assert.True(t, r.completed)
}
