package perception

import (
	"math"

	"geballer-core/internal/geom"
	"geballer-core/pkg/logger"

	"github.com/faiface/pixel"
	"github.com/sirupsen/logrus"
)

// Observation: результат одного взгляда: циклический список треугольников,
// упорядоченный справа налево, без дыр и перекрытий.
type Observation struct {
	Viewer    Viewer
	triangles []Triangle
}

// Observe запускает развёртку и нарезает шаги на треугольники. entities
// связывает синтетические отрезки-силуэты с породившими их кругами; может
// быть nil.
func Observe(v Viewer, segments []*geom.TypedSegment, entities map[*geom.TypedSegment]*geom.Circle) (*Observation, error) {
	steps, err := ComputeSteps(v, segments)
	if err != nil {
		return nil, err
	}

	obs := &Observation{
		Viewer:    v,
		triangles: make([]Triangle, 0, len(steps)-1),
	}
	for i := 1; i < len(steps); i++ {
		obs.triangles = append(obs.triangles, buildTriangle(v.Position, steps[i-1], steps[i], entities))
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "perception",
		"segments":  len(segments),
		"triangles": len(obs.triangles),
	}).Trace("observation built")
	return obs, nil
}

// buildTriangle строит клин [cur.Angle, prev.Angle] с видимым отрезком prev.
func buildTriangle(origin pixel.Vec, prev, cur Step, entities map[*geom.TypedSegment]*geom.Circle) Triangle {
	t := Triangle{
		RightAngle: prev.Angle,
		LeftAngle:  cur.Angle,
		LeftDist:   math.Inf(1),
		RightDist:  math.Inf(1),
		Category:   CategoryOpenSpace,
	}
	switch {
	case prev.OutOfView():
		t.Category = geom.CategoryOutOfViewingArea
		return t
	case prev.Segment == nil:
		return t
	}

	seg := prev.Segment
	t.Segment = seg
	t.Category = seg.Category
	t.Entity = entities[seg]
	t.Range = geom.IntervalOf(seg.Line, origin, t.LeftAngle, t.RightAngle)
	// A видна слева, поэтому левый луч упирается в начало интервала.
	t.LeftDist = geom.QuotientDist(seg.Line, origin, t.Range.From)
	t.RightDist = geom.QuotientDist(seg.Line, origin, t.Range.To)
	return t
}

// Triangles возвращает копию списка треугольников.
func (o *Observation) Triangles() []Triangle {
	out := make([]Triangle, len(o.triangles))
	copy(out, o.triangles)
	return out
}

// VisibleEntities: круги, чьи силуэты попали хотя бы в один треугольник.
func (o *Observation) VisibleEntities() []*geom.Circle {
	var out []*geom.Circle
	seen := make(map[*geom.Circle]struct{})
	for _, t := range o.triangles {
		if t.Entity == nil {
			continue
		}
		if _, ok := seen[t.Entity]; ok {
			continue
		}
		seen[t.Entity] = struct{}{}
		out = append(out, t.Entity)
	}
	return out
}

// NearestDistance: расстояние до видимого препятствия вдоль направления
// dir. +Inf для пустоты и дуги вне поля зрения.
func (o *Observation) NearestDistance(dir geom.Angle) float64 {
	t, ok := o.TriangleAt(dir)
	if !ok || t.Segment == nil {
		return math.Inf(1)
	}
	return geom.RayDistance(t.Segment.Line, o.Viewer.Position, dir)
}

// TriangleAt находит клин, содержащий направление dir.
func (o *Observation) TriangleAt(dir geom.Angle) (Triangle, bool) {
	for _, t := range o.triangles {
		off := dir.Minus(t.RightAngle).Radians()
		if off < t.Width() || dir.Equal(t.RightAngle) {
			return t, true
		}
	}
	return Triangle{}, false
}
