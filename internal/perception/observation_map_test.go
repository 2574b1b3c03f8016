package perception

import (
	"math"
	"testing"

	"geballer-core/internal/geom"

	"github.com/faiface/pixel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangeTriangle(seg *geom.TypedSegment, from, to float64) Triangle {
	return Triangle{Segment: seg, Category: seg.Category, Range: geom.Interval{From: from, To: to}}
}

func TestObservationMap_Add(t *testing.T) {
	wall := geom.NewTypedSegment(pixel.V(0, 0), pixel.V(4, 0), "wall")

	t.Run("same range twice keeps sequence", func(t *testing.T) {
		m := NewObservationMap("wall")
		require.NoError(t, m.Add(rangeTriangle(wall, 0.25, 0.5)))
		first, ok := m.Coverage(wall)
		require.True(t, ok)
		segs := m.Segments()

		require.NoError(t, m.Add(rangeTriangle(wall, 0.25, 0.5)))
		second, _ := m.Coverage(wall)
		assert.Same(t, first, second)
		assert.Equal(t, segs, m.Segments())
	})

	t.Run("adjacent ranges merge", func(t *testing.T) {
		m := NewObservationMap("wall")
		require.NoError(t, m.Add(rangeTriangle(wall, 0, 0.5)))
		require.NoError(t, m.Add(rangeTriangle(wall, 0.5, 1)))

		segs := m.Segments()
		require.Len(t, segs, 1)
		assert.Equal(t, pixel.V(0, 0), segs[0].A)
		assert.Equal(t, pixel.V(4, 0), segs[0].B)
		assert.Equal(t, "wall", segs[0].Category)
	})

	t.Run("disjoint ranges stay apart", func(t *testing.T) {
		m := NewObservationMap("wall")
		require.NoError(t, m.Add(rangeTriangle(wall, 0.75, 1)))
		require.NoError(t, m.Add(rangeTriangle(wall, 0, 0.25)))

		segs := m.Segments()
		require.Len(t, segs, 2)
		assert.InDelta(t, 1, segs[0].B.X, 1e-12)
		assert.InDelta(t, 3, segs[1].A.X, 1e-12)
	})

	t.Run("untracked category and open space ignored", func(t *testing.T) {
		m := NewObservationMap("wall")
		glass := geom.NewTypedSegment(pixel.V(0, 1), pixel.V(1, 1), "glass")
		require.NoError(t, m.Add(rangeTriangle(glass, 0, 1)))
		require.NoError(t, m.Add(Triangle{}))
		assert.Zero(t, m.SegmentCount())
		assert.Empty(t, m.Segments())
	})

	t.Run("out of range", func(t *testing.T) {
		m := NewObservationMap("wall")
		err := m.Add(rangeTriangle(wall, 0.5, 1.5))
		assert.ErrorIs(t, err, geom.ErrQuotientOutOfRange)
		assert.Zero(t, m.SegmentCount())
	})

	t.Run("entities are atomic", func(t *testing.T) {
		m := NewObservationMap("droid")
		c := &geom.Circle{Center: pixel.V(2, 2), Radius: 0.5, Category: "droid"}
		sil, _ := c.Silhouette(pixel.ZV)
		tr := rangeTriangle(sil, 0.2, 0.4)
		tr.Entity = c

		require.NoError(t, m.Add(tr))
		assert.Equal(t, []*geom.Circle{c}, m.Entities())
		assert.Empty(t, m.Segments())
	})
}

func TestObservationMap_AccumulatesObservations(t *testing.T) {
	far := geom.NewTypedSegment(pixel.V(-2, 2), pixel.V(2, 2), "wall")
	near := geom.NewTypedSegment(pixel.V(-0.5, 1), pixel.V(0.5, 1), "wall")
	scene := []*geom.TypedSegment{far, near}
	m := NewObservationMap("wall")

	// 1. Снизу ближняя стена закрывает середину дальней.
	obs, err := Observe(Viewer{Facing: math.Pi / 2, FieldOfView: FullCircle}, scene, nil)
	require.NoError(t, err)
	require.NoError(t, m.AddObservation(obs))

	cov, ok := m.Coverage(far)
	require.True(t, ok)
	assert.Equal(t, 2, cov.Len())
	assert.InDelta(t, 0.5, cov.Covered(), 1e-9)
	assert.Len(t, m.Segments(), 3)

	// 2. С другой точки дальняя стена видна целиком, ближняя развёрнута спиной.
	obs, err = Observe(Viewer{Position: pixel.V(0, 1.5), FieldOfView: FullCircle}, scene, nil)
	require.NoError(t, err)
	require.NoError(t, m.AddObservation(obs))

	cov, _ = m.Coverage(far)
	assert.Equal(t, 1, cov.Len())
	assert.InDelta(t, 1, cov.Covered(), 1e-9)

	segs := m.Segments()
	require.Len(t, segs, 2)
	assert.InDelta(t, -2, segs[0].A.X, 1e-9)
	assert.InDelta(t, 2, segs[0].B.X, 1e-9)
	assert.Equal(t, 2, m.SegmentCount())

	// 3. Смена уровня.
	m.Clear()
	assert.Zero(t, m.SegmentCount())
	assert.Empty(t, m.Segments())
	assert.True(t, m.Tracks("wall"))
}
