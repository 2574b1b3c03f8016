package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func TestAngleTotalOrder(t *testing.T) {
	for i := 0; i < 360; i++ {
		for j := 0; j < 360; j++ {
			got := FromDegrees(float64(i)).Compare(FromDegrees(float64(j)))
			if got != sign(i-j) {
				t.Fatalf("Compare(%d°, %d°) = %d, want %d", i, j, got, sign(i-j))
			}
		}
	}
}

func TestAngleArithmetic(t *testing.T) {
	for i := 0; i < 360; i += 7 {
		for j := 0; j < 360; j += 11 {
			a, b := FromDegrees(float64(i)), FromDegrees(float64(j))
			sum := a.Plus(b)
			want := FromDegrees(float64(i + j))
			assert.InDelta(t, want.X(), sum.X(), 1e-12, "%d+%d", i, j)
			assert.InDelta(t, want.Y(), sum.Y(), 1e-12, "%d+%d", i, j)

			back := sum.Minus(b)
			assert.True(t, back.Equal(a), "(%d+%d)-%d = %s", i, j, j, back)

			diff := a.Minus(b)
			wantDiff := FromDegrees(float64(i - j))
			assert.InDelta(t, wantDiff.X(), diff.X(), 1e-12)
			assert.InDelta(t, wantDiff.Y(), diff.Y(), 1e-12)
		}
	}
}

func TestAngleWrapAround(t *testing.T) {
	justBelowZero := FromRadians(-1e-6)
	assert.Equal(t, 1, justBelowZero.Compare(FromDegrees(359)))
	assert.Equal(t, -1, Zero.Compare(justBelowZero))
	assert.True(t, Zero.Equal(FromDegrees(360)))
	assert.True(t, FromRadians(2*math.Pi).Equal(Zero))
}

func TestAngleFromVector(t *testing.T) {
	a, err := FromVector(0, 3)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, a.Degrees(), 1e-12)

	_, err = FromVector(0, 0)
	assert.ErrorIs(t, err, ErrZeroVector)

	_, err = FromVector(1e-12, 0)
	assert.ErrorIs(t, err, ErrZeroVector)
}

func TestAngleMin(t *testing.T) {
	assert.True(t, Min(FromDegrees(10), FromDegrees(350)).Equal(FromDegrees(10)))
	assert.True(t, Min(FromDegrees(350), FromDegrees(10)).Equal(FromDegrees(10)))
	assert.True(t, Max(FromDegrees(350), FromDegrees(10)).Equal(FromDegrees(350)))
}

func TestAngleRadians(t *testing.T) {
	tests := []struct {
		deg  float64
		want float64
	}{
		{0, 0},
		{90, math.Pi / 2},
		{180, math.Pi},
		{270, 3 * math.Pi / 2},
		{-90, 3 * math.Pi / 2},
		{725, 5 * math.Pi / 180},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, FromDegrees(tt.deg).Radians(), 1e-12, "deg=%v", tt.deg)
	}
}
