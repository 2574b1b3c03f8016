package perception

import (
	"fmt"

	"geballer-core/internal/geom"
)

// ObservationMap: долговременная память агента об уровне: для каждого
// исходного отрезка отслеживаемой категории: объединение увиденных
// подынтервалов, плюс множество полностью увиденных кругов.
//
// Один экземпляр на пару (агент, уровень). Не потокобезопасна: мутирует
// только владеющий ею агент.
type ObservationMap struct {
	categories map[string]struct{}
	seen       map[*geom.TypedSegment]*geom.IntervalSeq
	order      []*geom.TypedSegment
	entities   map[*geom.Circle]struct{}

	// flat: кэш плоских подотрезков; nil означает "устарел".
	flat []*geom.TypedSegment
}

// NewObservationMap создаёт пустую карту, запоминающую только перечисленные категории.
func NewObservationMap(categories ...string) *ObservationMap {
	m := &ObservationMap{categories: make(map[string]struct{}, len(categories))}
	for _, c := range categories {
		m.categories[c] = struct{}{}
	}
	m.Clear()
	return m
}

// Tracks сообщает, запоминает ли карта категорию.
func (m *ObservationMap) Tracks(category string) bool {
	_, ok := m.categories[category]
	return ok
}

// Clear забывает всё увиденное (смена уровня). Набор категорий сохраняется.
func (m *ObservationMap) Clear() {
	m.seen = make(map[*geom.TypedSegment]*geom.IntervalSeq)
	m.order = nil
	m.entities = make(map[*geom.Circle]struct{})
	m.flat = nil
}

// Add учитывает один треугольник. Треугольники без отрезка и с
// неотслеживаемой категорией игнорируются. Сущности запоминаются целиком.
func (m *ObservationMap) Add(t Triangle) error {
	if t.Segment == nil || !m.Tracks(t.Segment.Category) {
		return nil
	}
	if t.Entity != nil {
		m.entities[t.Entity] = struct{}{}
		return nil
	}
	if t.Range.From < -geom.IntervalEpsilon || t.Range.To > 1+geom.IntervalEpsilon {
		return fmt.Errorf("%w: %s on %s", geom.ErrQuotientOutOfRange, t.Range, t.Segment)
	}

	prev, ok := m.seen[t.Segment]
	if !ok {
		prev = geom.NewIntervalSeq()
		m.order = append(m.order, t.Segment)
	}
	next := prev.Add(t.Range)
	if next != prev || !ok {
		m.seen[t.Segment] = next
		m.flat = nil
	}
	return nil
}

// AddObservation учитывает все треугольники наблюдения.
func (m *ObservationMap) AddObservation(o *Observation) error {
	for _, t := range o.triangles {
		if err := m.Add(t); err != nil {
			return err
		}
	}
	return nil
}

// Coverage возвращает накопленную последовательность для исходного отрезка.
func (m *ObservationMap) Coverage(s *geom.TypedSegment) (*geom.IntervalSeq, bool) {
	seq, ok := m.seen[s]
	return seq, ok
}

// Segments возвращает всё увиденное как самостоятельные отрезки: каждый
// накопленный интервал превращается в отрезок той же категории. Результат
// кэшируется до следующего реального расширения покрытия.
func (m *ObservationMap) Segments() []*geom.TypedSegment {
	if m.flat == nil {
		m.flat = m.flatten()
	}
	out := make([]*geom.TypedSegment, len(m.flat))
	copy(out, m.flat)
	return out
}

func (m *ObservationMap) flatten() []*geom.TypedSegment {
	flat := make([]*geom.TypedSegment, 0, len(m.order))
	for _, s := range m.order {
		for _, iv := range m.seen[s].Intervals() {
			if iv.IsPoint() {
				continue
			}
			sub, err := geom.SubSegment(s, iv)
			if err != nil {
				// Add не пропускает интервалы вне [0, 1].
				panic(err)
			}
			flat = append(flat, sub)
		}
	}
	return flat
}

// Entities возвращает увиденные круги.
func (m *ObservationMap) Entities() []*geom.Circle {
	out := make([]*geom.Circle, 0, len(m.entities))
	for c := range m.entities {
		out = append(out, c)
	}
	return out
}

// SegmentCount: число исходных отрезков, о которых что-то известно.
func (m *ObservationMap) SegmentCount() int { return len(m.seen) }
