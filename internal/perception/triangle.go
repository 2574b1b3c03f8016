package perception

import (
	"fmt"
	"math"

	"geballer-core/internal/geom"

	"github.com/faiface/pixel"
)

// CategoryOpenSpace: категория треугольника, через который ничего не видно.
const CategoryOpenSpace = ""

// Triangle: угловой клин от наблюдателя между RightAngle и LeftAngle
// (Left против часовой стрелки от Right). Если Segment != nil, клин упирается
// в видимую часть Range этого отрезка; LeftDist/RightDist: длины боковых
// лучей. Для открытого пространства и дуги вне поля зрения расстояния
// бесконечны, а Segment == nil.
type Triangle struct {
	LeftAngle  geom.Angle
	RightAngle geom.Angle
	LeftDist   float64
	RightDist  float64
	Segment    *geom.TypedSegment
	Range      geom.Interval
	Entity     *geom.Circle
	Category   string
}

// OutOfView сообщает, что клин лежит вне поля зрения.
func (t Triangle) OutOfView() bool { return t.Category == geom.CategoryOutOfViewingArea }

// OpenSpace: клин смотрит в пустоту.
func (t Triangle) OpenSpace() bool { return t.Segment == nil && !t.OutOfView() }

// Finite: обе стороны имеют конечную длину.
func (t Triangle) Finite() bool {
	return !math.IsInf(t.LeftDist, 0) && !math.IsInf(t.RightDist, 0)
}

// Width: угловая ширина клина в радианах. Совпадающие углы означают
// полный круг.
func (t Triangle) Width() float64 {
	w := t.LeftAngle.Minus(t.RightAngle).Radians()
	if w == 0 {
		return FullCircle
	}
	return w
}

// Contains проверяет (барицентрически) принадлежность точки, заданной
// относительно наблюдателя (вершина треугольника в начале координат).
// Для бесконечных клинов всегда false.
func (t Triangle) Contains(x, y float64) bool {
	if !t.Finite() {
		return false
	}
	r := t.RightAngle.Vec().Scaled(t.RightDist)
	l := t.LeftAngle.Vec().Scaled(t.LeftDist)
	det := r.Cross(l)
	if det == 0 {
		return false
	}
	p := pixel.V(x, y)
	u := p.Cross(l) / det
	v := r.Cross(p) / det
	const tol = 1e-12
	return u >= -tol && v >= -tol && u+v <= 1+tol
}

func (t Triangle) String() string {
	what := "open"
	switch {
	case t.OutOfView():
		what = "out-of-view"
	case t.Segment != nil:
		what = fmt.Sprintf("%s %s", t.Segment, t.Range)
	}
	return fmt.Sprintf("[%s..%s] %s", t.RightAngle, t.LeftAngle, what)
}
