package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/faiface/pixel"
)

// CategoryOutOfViewingArea: зарезервированная категория синтетического
// отрезка, закрывающего дугу вне поля зрения. Наружу не отдаётся.
const CategoryOutOfViewingArea = "OUT_OF_VIEWING_AREA"

// ParallelTolerance: порог |det| (на единицу длины отрезка), ниже которого
// луч считается параллельным отрезку.
const ParallelTolerance = 1e-12

// OnSegmentTolerance: допуск "точка лежит на отрезке / на луче".
const OnSegmentTolerance = 1e-9

// ErrQuotientOutOfRange: запрошен подотрезок за пределами [0, 1].
var ErrQuotientOutOfRange = errors.New("geom: quotient out of [0,1]")

// TypedSegment: направленный отрезок A→B с категорией. Категория нужна
// только потребителям (стена, контур препятствия, силуэт сущности).
//
// Видимая сторона: правая относительно направления A→B: наблюдатель,
// смотрящий на отрезок, видит A слева от B.
type TypedSegment struct {
	pixel.Line
	Category string
}

// NewTypedSegment создаёт отрезок from→to.
func NewTypedSegment(from, to pixel.Vec, category string) *TypedSegment {
	return &TypedSegment{Line: pixel.L(from, to), Category: category}
}

func (s *TypedSegment) String() string {
	return fmt.Sprintf("%s(%.3f,%.3f)->(%.3f,%.3f)", s.Category, s.A.X, s.A.Y, s.B.X, s.B.Y)
}

// PointAt возвращает точку отрезка с параметром q (0: A, 1: B).
func PointAt(l pixel.Line, q float64) pixel.Vec {
	return l.A.Add(l.B.Sub(l.A).Scaled(q))
}

// QuotientDist: расстояние от p до точки отрезка с параметром q.
func QuotientDist(l pixel.Line, p pixel.Vec, q float64) float64 {
	return PointAt(l, q).Sub(p).Len()
}

// projection: параметр ортогональной проекции p на прямую отрезка (без обрезки).
func projection(l pixel.Line, p pixel.Vec) float64 {
	e := l.B.Sub(l.A)
	ll := e.Dot(e)
	if ll == 0 {
		return 0
	}
	return p.Sub(l.A).Dot(e) / ll
}

// Distance: расстояние от точки до ближайшей точки отрезка.
func Distance(p pixel.Vec, l pixel.Line) float64 {
	e := l.B.Sub(l.A)
	length := e.Len()
	if length == 0 {
		return p.Sub(l.A).Len()
	}
	if p.Sub(l.A).Dot(e) <= 0 {
		return p.Sub(l.A).Len()
	}
	if p.Sub(l.B).Dot(e) >= 0 {
		return p.Sub(l.B).Len()
	}
	return math.Abs(e.Cross(p.Sub(l.A))) / length
}

// Quotient пускает луч из p в направлении dir и возвращает параметр точки,
// где луч пересекает отрезок, либо NaN, если пересечения нет.
//
// Для луча, параллельного отрезку: если p лежит на отрезке: параметр его
// проекции; если на луче лежит конец отрезка: 0 или 1 (ближайший);
// иначе NaN.
func Quotient(l pixel.Line, p pixel.Vec, dir Angle) float64 {
	d := dir.Vec()
	e := l.B.Sub(l.A)
	length := e.Len()
	det := e.Cross(d)

	if math.Abs(det) <= ParallelTolerance*math.Max(length, 1) {
		return parallelQuotient(l, p, d)
	}

	ap := l.A.Sub(p)
	q := p.Sub(l.A).Cross(d) / det
	t := ap.Cross(e) / d.Cross(e)
	tol := OnSegmentTolerance / math.Max(length, OnSegmentTolerance)
	if t < -OnSegmentTolerance || q < -tol || q > 1+tol {
		return math.NaN()
	}
	return clamp01(q)
}

func parallelQuotient(l pixel.Line, p pixel.Vec, d pixel.Vec) float64 {
	if Distance(p, l) <= OnSegmentTolerance {
		return clamp01(projection(l, p))
	}
	best, bestT := math.NaN(), math.Inf(1)
	for i, end := range [2]pixel.Vec{l.A, l.B} {
		rel := end.Sub(p)
		t := rel.Dot(d)
		if t < 0 || math.Abs(rel.Cross(d)) > OnSegmentTolerance {
			continue
		}
		if t < bestT {
			best, bestT = float64(i), t
		}
	}
	return best
}

// RayDistance: расстояние вдоль луча из p до прямой отрезка. +Inf, если
// луч параллелен прямой или пересекает её позади p.
func RayDistance(l pixel.Line, p pixel.Vec, dir Angle) float64 {
	d := dir.Vec()
	e := l.B.Sub(l.A)
	den := d.Cross(e)
	if math.Abs(den) <= ParallelTolerance*math.Max(e.Len(), 1) {
		return math.Inf(1)
	}
	t := l.A.Sub(p).Cross(e) / den
	if t < 0 {
		return math.Inf(1)
	}
	return t
}

// lineQuotient: параметр пересечения луча с прямой отрезка (без проверок
// диапазона); ok=false для параллельного луча.
func lineQuotient(l pixel.Line, p pixel.Vec, dir Angle) (float64, bool) {
	d := dir.Vec()
	e := l.B.Sub(l.A)
	det := e.Cross(d)
	if math.Abs(det) <= ParallelTolerance*math.Max(e.Len(), 1) {
		return 0, false
	}
	return p.Sub(l.A).Cross(d) / det, true
}

// IntervalOf проецирует угловой клин [right, left] (относительно p) на
// параметрическую область отрезка. Результат обрезан до [0, 1]. Если любой
// из лучей параллелен отрезку, возвращается EmptyInterval.
func IntervalOf(l pixel.Line, p pixel.Vec, left, right Angle) Interval {
	ql, ok := lineQuotient(l, p, left)
	if !ok {
		return EmptyInterval
	}
	qr, ok := lineQuotient(l, p, right)
	if !ok {
		return EmptyInterval
	}
	lo, hi := clamp01(math.Min(ql, qr)), clamp01(math.Max(ql, qr))
	return Interval{From: lo, To: hi}
}

// MinDistanceSquared: квадрат минимального расстояния между двумя
// отрезками. Решается система 2×2 на параметры обоих отрезков с обрезкой
// в [0, 1]; вырожденные (точечные) и параллельные случаи сводятся к
// расстоянию от точки до отрезка. Используется для проверки столкновений
// при движении (отрезок пути против стены), не для видимости.
func MinDistanceSquared(a, b pixel.Line) float64 {
	d1 := a.B.Sub(a.A)
	d2 := b.B.Sub(b.A)
	r := a.A.Sub(b.A)
	aa := d1.Dot(d1)
	ee := d2.Dot(d2)
	f := d2.Dot(r)

	const tiny = 1e-18
	switch {
	case aa <= tiny && ee <= tiny:
		return r.Dot(r)
	case aa <= tiny:
		return sq(Distance(a.A, b))
	case ee <= tiny:
		return sq(Distance(b.A, a))
	}

	c := d1.Dot(r)
	bb := d1.Dot(d2)
	denom := aa*ee - bb*bb
	if denom <= tiny*aa*ee {
		// Параллельные отрезки: минимум достигается на одном из концов.
		return math.Min(
			math.Min(sq(Distance(a.A, b)), sq(Distance(a.B, b))),
			math.Min(sq(Distance(b.A, a)), sq(Distance(b.B, a))),
		)
	}

	s := clamp01((bb*f - c*ee) / denom)
	t := (bb*s + f) / ee
	switch {
	case t < 0:
		t = 0
		s = clamp01(-c / aa)
	case t > 1:
		t = 1
		s = clamp01((bb - c) / aa)
	}
	c1 := a.A.Add(d1.Scaled(s))
	c2 := b.A.Add(d2.Scaled(t))
	diff := c1.Sub(c2)
	return diff.Dot(diff)
}

// SubSegment выражает интервал параметров как самостоятельный отрезок той же категории.
func SubSegment(s *TypedSegment, iv Interval) (*TypedSegment, error) {
	if iv.From < -IntervalEpsilon || iv.To > 1+IntervalEpsilon {
		return nil, fmt.Errorf("%w: %s on %s", ErrQuotientOutOfRange, iv, s)
	}
	return NewTypedSegment(PointAt(s.Line, clamp01(iv.From)), PointAt(s.Line, clamp01(iv.To)), s.Category), nil
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

func sq(x float64) float64 { return x * x }
