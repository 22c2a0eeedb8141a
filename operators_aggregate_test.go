package rx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// §8 property 9: reduce(+, 0) over range(1, n) equals n*(n+1)/2.
func TestReduceSumMatchesClosedForm(t *testing.T) {
	const n = 10
	r := &recorder{}
	Range(1, n, 1).Reduce(0, func(acc, v any) any { return acc.(int) + v.(int) }).Subscribe(r.observer())

	require.Len(t, r.values, 1)
	assert.Equal(t, n*(n+1)/2, r.values[0])
}

func TestScanEmitsRunningTotal(t *testing.T) {
	r := &recorder{}
	Just(1, 2, 3).Scan(0, func(acc, v any) any { return acc.(int) + v.(int) }).Subscribe(r.observer())
	assert.Equal(t, []any{1, 3, 6}, r.values)
}

// §8 property 5: range(0, n).length().wait() == n.
func TestLengthMatchesRangeSize(t *testing.T) {
	v, err := Wait(Range(0, 7, 1).Length())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

// §8 property 6: range(0, n).take(k).length().wait() == min(n, k).
func TestLengthAfterTakeIsMinimum(t *testing.T) {
	v, err := Wait(Range(0, 7, 1).Take(3).Length())
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v2, err := Wait(Range(0, 2, 1).Take(10).Length())
	require.NoError(t, err)
	assert.Equal(t, 2, v2)
}

func TestMinMaxWithNumericLess(t *testing.T) {
	less := NumericLess[int]()

	min, err := Wait(Just(5, 2, 8, 1).Min(less))
	require.NoError(t, err)
	assert.Equal(t, 1, min)

	max, err := Wait(Just(5, 2, 8, 1).Max(less))
	require.NoError(t, err)
	assert.Equal(t, 8, max)
}

func TestMinOnEmptyIsErrEmptySequence(t *testing.T) {
	_, err := Wait(Empty.Min(NumericLess[int]()))
	assert.Equal(t, ErrEmptySequence, err)
}

func TestAnyShortCircuitsOnFirstMatch(t *testing.T) {
	subscriptions := 0
	source := Create(func(obs Observer) Disposable {
		subscriptions++
		for i := 0; i < 100; i++ {
			obs.next(i)
		}
		obs.complete()
		return Noop
	})
	v, err := Wait(source.Any(func(v any) bool { return v.(int) == 3 }))
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestAnyFalseWhenNoneMatch(t *testing.T) {
	v, err := Wait(Just(1, 2, 3).Any(func(v any) bool { return v.(int) > 10 }))
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestAllFalseOnFirstMismatch(t *testing.T) {
	v, err := Wait(Just(2, 4, 5, 6).All(func(v any) bool { return v.(int)%2 == 0 }))
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestContainsDelegatesToAny(t *testing.T) {
	v, err := Wait(Just("a", "b", "c").Contains("b"))
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestDefaultIfEmptyOnlyAppliesWhenEmpty(t *testing.T) {
	r := &recorder{}
	Empty.DefaultIfEmpty(42).Subscribe(r.observer())
	assert.Equal(t, []any{42}, r.values)

	r2 := &recorder{}
	Just(1).DefaultIfEmpty(42).Subscribe(r2.observer())
	assert.Equal(t, []any{1}, r2.values)
}

// §8 property 11.
func TestSequenceEqualOnIdenticalSequences(t *testing.T) {
	xs := []any{1, 2, 3}
	v, err := Wait(SequenceEqual(Just(xs...), Just(xs...), func(a, b any) bool { return a == b }))
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestSequenceEqualOnDivergentSequences(t *testing.T) {
	v, err := Wait(SequenceEqual(
		Just(1, 2, 3),
		Just(1, 9, 3),
		func(a, b any) bool { return a == b },
	))
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestSequenceEqualDetectsLengthMismatch(t *testing.T) {
	v, err := Wait(SequenceEqual(
		Just(1, 2, 3),
		Just(1, 2),
		func(a, b any) bool { return a == b },
	))
	require.NoError(t, err)
	assert.Equal(t, false, v)
}
