// Package geom содержит геометрическое ядро: направления (Angle), допусковые
// интервалы (Interval, IntervalSeq) и примитивы над отрезками.
//
// Система координат математическая: ось Y вверх, положительные углы идут
// против часовой стрелки.
package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/faiface/pixel"
)

// Epsilon: допуск сравнения координат единичных векторов.
const Epsilon = 1e-9

// ErrZeroVector возвращается, когда вектор нельзя нормировать.
var ErrZeroVector = errors.New("geom: vector too short to normalize")

// Angle: неизменяемое направление, хранится как единичный вектор.
//
// Порядок круговой: углы сравниваются так, будто они измерены в [0, 2π)
// от положительной оси X против часовой стрелки. Zero: минимум, значения
// чуть меньше нуля оказываются максимумом.
type Angle struct {
	v pixel.Vec
}

// Zero: направление оси X.
var Zero = Angle{v: pixel.V(1, 0)}

// FromVector нормирует произвольный вектор.
func FromVector(x, y float64) (Angle, error) {
	l := math.Hypot(x, y)
	if l < Epsilon {
		return Angle{}, fmt.Errorf("%w: (%g, %g)", ErrZeroVector, x, y)
	}
	return Angle{v: pixel.V(x/l, y/l)}, nil
}

// FromVec: то же, что FromVector, для pixel.Vec.
func FromVec(v pixel.Vec) (Angle, error) {
	return FromVector(v.X, v.Y)
}

// FromRadians строит угол по значению в радианах.
func FromRadians(r float64) Angle {
	s, c := math.Sincos(r)
	return Angle{v: pixel.V(c, s)}
}

// FromDegrees строит угол по градусам. Кратные 90° дают точные значения.
func FromDegrees(d float64) Angle {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return Zero
	case 90:
		return Angle{v: pixel.V(0, 1)}
	case 180:
		return Angle{v: pixel.V(-1, 0)}
	case 270:
		return Angle{v: pixel.V(0, -1)}
	}
	return FromRadians(d * math.Pi / 180)
}

func (a Angle) X() float64     { return a.v.X }
func (a Angle) Y() float64     { return a.v.Y }
func (a Angle) Vec() pixel.Vec { return a.v }

// upper сообщает, лежит ли угол в полуинтервале [0, π).
func (a Angle) upper() bool {
	return a.v.Y > 0 || (a.v.Y == 0 && a.v.X > 0)
}

// Compare возвращает -1, 0 или 1. Радианы не вычисляются: достаточно
// знаков и одного векторного произведения.
func (a Angle) Compare(o Angle) int {
	if math.Abs(a.v.X-o.v.X) < Epsilon && math.Abs(a.v.Y-o.v.Y) < Epsilon {
		return 0
	}
	au, ou := a.upper(), o.upper()
	if au != ou {
		if au {
			return -1
		}
		return 1
	}
	det := a.v.Cross(o.v)
	switch {
	case det > 0:
		return -1
	case det < 0:
		return 1
	}
	return 0
}

// Equal сравнивает углы в смысле Compare.
func (a Angle) Equal(o Angle) bool { return a.Compare(o) == 0 }

// Less: a строго раньше o в круговом порядке.
func (a Angle) Less(o Angle) bool { return a.Compare(o) < 0 }

// Plus композиция поворотов (умножение комплексных чисел).
// Перенормировка не выполняется.
func (a Angle) Plus(o Angle) Angle {
	return Angle{v: pixel.V(
		a.v.X*o.v.X-a.v.Y*o.v.Y,
		a.v.X*o.v.Y+a.v.Y*o.v.X,
	)}
}

// Minus обратна Plus: a.Minus(o).Plus(o) == a.
func (a Angle) Minus(o Angle) Angle {
	return Angle{v: pixel.V(
		a.v.X*o.v.X+a.v.Y*o.v.Y,
		a.v.Y*o.v.X-a.v.X*o.v.Y,
	)}
}

// Opposite: поворот на π.
func (a Angle) Opposite() Angle {
	return Angle{v: pixel.V(-a.v.X, -a.v.Y)}
}

// Radians возвращает значение в [0, 2π).
func (a Angle) Radians() float64 {
	r := math.Atan2(a.v.Y, a.v.X)
	if r < 0 {
		r += 2 * math.Pi
	}
	if r >= 2*math.Pi {
		r = 0
	}
	return r
}

func (a Angle) Degrees() float64 { return a.Radians() * 180 / math.Pi }

func (a Angle) String() string {
	return fmt.Sprintf("%.3f°", a.Degrees())
}

// Min возвращает меньший из двух углов в круговом порядке.
func Min(u, v Angle) Angle {
	if v.Less(u) {
		return v
	}
	return u
}

// Max возвращает больший из двух углов.
func Max(u, v Angle) Angle {
	if u.Less(v) {
		return v
	}
	return u
}
