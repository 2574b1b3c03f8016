package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iv(from, to float64) Interval { return Interval{From: from, To: to} }

func TestNewInterval(t *testing.T) {
	got, err := NewInterval(0.2, 0.4)
	require.NoError(t, err)
	assert.Equal(t, iv(0.2, 0.4), got)

	_, err = NewInterval(0.5, 0.4)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	// Шум в пределах допуска схлопывается в точку.
	got, err = NewInterval(0.5+IntervalEpsilon/2, 0.5)
	require.NoError(t, err)
	assert.True(t, got.IsPoint())
}

func TestIntervalContains(t *testing.T) {
	i := iv(0.25, 0.5)
	assert.True(t, i.Contains(0.25))
	assert.True(t, i.Contains(0.5+IntervalEpsilon/2))
	assert.False(t, i.Contains(0.6))
	assert.True(t, i.ContainsInterval(iv(0.3, 0.4)))
	assert.False(t, i.ContainsInterval(iv(0.3, 0.6)))
}

func TestIntervalSeqMerge(t *testing.T) {
	seq := NewIntervalSeq(iv(0, 0.1), iv(0.5, 0.9))
	require.Equal(t, 2, seq.Len())

	merged := seq.Add(iv(0.2, 0.4))
	assert.Equal(t, []Interval{iv(0, 0.1), iv(0.2, 0.4), iv(0.5, 0.9)}, merged.Intervals())
	// Исходная последовательность не изменилась.
	assert.Equal(t, 2, seq.Len())

	all := merged.Add(iv(0, 1))
	assert.Equal(t, []Interval{iv(0, 1)}, all.Intervals())
}

func TestIntervalSeqIdempotent(t *testing.T) {
	seq := NewIntervalSeq(iv(0, 0.1), iv(0.5, 0.9))
	assert.Same(t, seq, seq.Add(iv(0.6, 0.7)))
	assert.Same(t, seq, seq.Add(iv(0.5, 0.9)))
	assert.Same(t, seq, seq.Add(Point(0.05)))
	assert.NotSame(t, seq, seq.Add(iv(0.85, 0.95)))
}

func TestIntervalSeqTouchingMerges(t *testing.T) {
	seq := NewIntervalSeq(iv(0, 0.3))
	seq = seq.Add(iv(0.3+IntervalEpsilon/2, 0.6))
	assert.Equal(t, 1, seq.Len())
	assert.InDelta(t, 0.6, seq.Covered(), 1e-6)
}

func TestIntervalSeqOrderIndependent(t *testing.T) {
	parts := []Interval{iv(0.7, 0.8), iv(0, 0.1), iv(0.05, 0.2), iv(0.5, 0.6), iv(0.55, 0.75), iv(0.9, 0.9)}
	want := []Interval{iv(0, 0.2), iv(0.5, 0.8), iv(0.9, 0.9)}

	permute(parts, 0, func(p []Interval) {
		got := NewIntervalSeq(p...).Intervals()
		if !assert.Equal(t, want, got, "order %v", p) {
			t.FailNow()
		}
	})
}

func permute(a []Interval, k int, visit func([]Interval)) {
	if k == len(a) {
		visit(a)
		return
	}
	for i := k; i < len(a); i++ {
		a[k], a[i] = a[i], a[k]
		permute(a, k+1, visit)
		a[k], a[i] = a[i], a[k]
	}
}

func TestIntervalSeqContains(t *testing.T) {
	seq := NewIntervalSeq(iv(0.1, 0.2), iv(0.4, 0.5))
	assert.True(t, seq.Contains(0.15))
	assert.False(t, seq.Contains(0.3))
	assert.Equal(t, "[0.1, 0.2] [0.4, 0.5]", seq.String())
}
