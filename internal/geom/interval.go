package geom

import (
	"errors"
	"fmt"
	"strings"
)

// IntervalEpsilon: абсолютный допуск для сравнения параметров на отрезке.
// Шум на общих концах соседних треугольников не должен давать ложных дыр.
const IntervalEpsilon = 1e-7

// ErrInvalidInterval возвращается при from > to.
var ErrInvalidInterval = errors.New("geom: interval from > to")

// Interval: отрезок [From, To] с допусковыми сравнениями. From == To допустимо.
type Interval struct {
	From float64 `json:"from" yaml:"from"`
	To   float64 `json:"to" yaml:"to"`
}

// EmptyInterval: вырожденный интервал [0, 0].
var EmptyInterval = Interval{}

// NewInterval проверяет инвариант From <= To. Нарушение в пределах
// IntervalEpsilon считается шумом и схлопывается в точку.
func NewInterval(from, to float64) (Interval, error) {
	if from > to {
		if from-to > IntervalEpsilon {
			return Interval{}, fmt.Errorf("%w: [%g, %g]", ErrInvalidInterval, from, to)
		}
		to = from
	}
	return Interval{From: from, To: to}, nil
}

// Point: интервал из одной точки.
func Point(x float64) Interval { return Interval{From: x, To: x} }

func (i Interval) Len() float64 { return i.To - i.From }

func (i Interval) IsPoint() bool { return i.Len() <= IntervalEpsilon }

// Contains проверяет принадлежность точки с допуском.
func (i Interval) Contains(x float64) bool {
	return x >= i.From-IntervalEpsilon && x <= i.To+IntervalEpsilon
}

// ContainsInterval проверяет вложенность с допуском.
func (i Interval) ContainsInterval(o Interval) bool {
	return i.Contains(o.From) && i.Contains(o.To)
}

// before: i целиком левее o и не касается его.
func (i Interval) before(o Interval) bool {
	return i.To < o.From-IntervalEpsilon
}

func (i Interval) String() string {
	return fmt.Sprintf("[%g, %g]", i.From, i.To)
}

// IntervalSeq: упорядоченная по From, непересекающаяся и минимальная
// последовательность интервалов. Значение неизменяемое: Add всегда возвращает
// последовательность, а если покрытие не изменилось: тот же самый указатель.
// Вызывающие используют неравенство указателей как дешёвый признак изменения.
type IntervalSeq struct {
	items []Interval
}

// NewIntervalSeq строит последовательность, добавляя интервалы по одному.
func NewIntervalSeq(ivs ...Interval) *IntervalSeq {
	s := &IntervalSeq{}
	for _, iv := range ivs {
		s = s.Add(iv)
	}
	return s
}

// Add объединяет интервал с последовательностью за один линейный проход.
func (s *IntervalSeq) Add(iv Interval) *IntervalSeq {
	for _, cur := range s.items {
		if cur.ContainsInterval(iv) {
			return s
		}
	}

	out := make([]Interval, 0, len(s.items)+1)
	pending := iv
	inserted := false
	for _, cur := range s.items {
		switch {
		case inserted:
			out = append(out, cur)
		case cur.before(pending):
			out = append(out, cur)
		case pending.before(cur):
			out = append(out, pending, cur)
			inserted = true
		default:
			// Пересекаются или касаются: поглощаем.
			pending.From = min(pending.From, cur.From)
			pending.To = max(pending.To, cur.To)
		}
	}
	if !inserted {
		out = append(out, pending)
	}
	return &IntervalSeq{items: out}
}

// Intervals возвращает копию элементов.
func (s *IntervalSeq) Intervals() []Interval {
	out := make([]Interval, len(s.items))
	copy(out, s.items)
	return out
}

func (s *IntervalSeq) Len() int { return len(s.items) }

// Covered: суммарная длина покрытия.
func (s *IntervalSeq) Covered() float64 {
	total := 0.0
	for _, iv := range s.items {
		total += iv.Len()
	}
	return total
}

// Contains проверяет, покрыта ли точка.
func (s *IntervalSeq) Contains(x float64) bool {
	for _, iv := range s.items {
		if iv.Contains(x) {
			return true
		}
	}
	return false
}

func (s *IntervalSeq) String() string {
	parts := make([]string, len(s.items))
	for i, iv := range s.items {
		parts[i] = iv.String()
	}
	return strings.Join(parts, " ")
}
