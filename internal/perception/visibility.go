// Package perception отвечает на вопрос "что я вижу отсюда": вращательная
// заметающая прямая над отрезками уровня, нарезка результата на треугольники
// и накопление увиденного в карту наблюдений агента.
package perception

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"geballer-core/internal/geom"

	"github.com/faiface/pixel"
)

// FullCircle: поле зрения не меньше этого значения считается неограниченным.
const FullCircle = 2 * math.Pi

// TooCloseTolerance: наблюдатель ближе этого к любому отрезку считается
// стоящим внутри препятствия.
const TooCloseTolerance = 1e-6

// ErrObserverTooClose: нарушено предусловие: агент касается стены.
var ErrObserverTooClose = errors.New("perception: observer too close to segment")

// ErrInvalidFieldOfView: ширина поля зрения не положительна (или NaN).
var ErrInvalidFieldOfView = errors.New("perception: field of view must be positive")

// outOfView: синтетический отрезок, закрывающий дугу вне поля зрения.
// Живёт только внутри развёртки, геометрии у него нет.
var outOfView = &geom.TypedSegment{Category: geom.CategoryOutOfViewingArea}

// Viewer описывает наблюдателя: позицию, направление взгляда и ширину
// поля зрения (радианы). FieldOfView >= FullCircle: без ограничений,
// нулевая или отрицательная ширина недопустима.
type Viewer struct {
	Position    pixel.Vec
	Facing      float64
	FieldOfView float64
}

// Unrestricted сообщает, видит ли наблюдатель полный круг.
func (v Viewer) Unrestricted() bool {
	return v.FieldOfView >= FullCircle
}

// startAngle: угол, принимаемый за ноль развёртки: правый край поля
// зрения или направление "на 6 часов" при круговом обзоре.
func (v Viewer) startAngle() geom.Angle {
	if v.Unrestricted() {
		return geom.FromRadians(v.Facing + math.Pi)
	}
	return geom.FromRadians(v.Facing - v.FieldOfView/2)
}

// Step: момент развёртки, начиная с которого (против часовой стрелки)
// ближайшим видимым отрезком становится Segment. nil: пустое пространство.
type Step struct {
	Angle   geom.Angle
	Segment *geom.TypedSegment
}

// OutOfView сообщает, что шаг открывает дугу вне поля зрения.
func (s Step) OutOfView() bool { return s.Segment == outOfView }

// border: событие развёртки: на этом угле одни отрезки перестают
// пересекать луч, другие начинают.
type border struct {
	rel    geom.Angle // угол относительно начала развёртки
	closes []*geom.TypedSegment
	opens  []*geom.TypedSegment
}

// sweep: явное состояние развёртки. Ничего не хранится в компараторах:
// ключ упорядочивания (расстояние вдоль луча) вычисляется заново для
// каждого клина.
type sweep struct {
	origin  pixel.Vec
	start   geom.Angle
	span    float64    // конец развёртки в радианах относительно start
	spanEnd geom.Angle // тот же конец как угол (только для ограниченного поля)
	events  []event
	borders []*border
	active  map[*geom.TypedSegment]struct{}
}

// event: конец отрезка на относительном угле rel.
type event struct {
	rel  geom.Angle
	seg  *geom.TypedSegment
	open bool
}

// ComputeSteps выполняет вращательную развёртку и возвращает шаги, на
// которых меняется ближайший видимый отрезок. Первый шаг продублирован в
// конце, так что последовательность можно обходить циклически.
func ComputeSteps(v Viewer, segments []*geom.TypedSegment) ([]Step, error) {
	if !(v.FieldOfView > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFieldOfView, v.FieldOfView)
	}
	for _, s := range segments {
		if geom.Distance(v.Position, s.Line) < TooCloseTolerance {
			return nil, fmt.Errorf("%w: %s at (%.3f,%.3f)", ErrObserverTooClose, s, v.Position.X, v.Position.Y)
		}
	}

	sw := &sweep{
		origin: v.Position,
		start:  v.startAngle(),
		span:   FullCircle,
		active: make(map[*geom.TypedSegment]struct{}),
	}
	if !v.Unrestricted() {
		sw.span = v.FieldOfView
		sw.spanEnd = geom.FromRadians(v.FieldOfView)
	}
	for _, s := range segments {
		sw.addSegment(s)
	}
	sw.buildBorders()

	steps := sw.run()
	if !v.Unrestricted() {
		steps = append(steps, Step{Angle: sw.abs(sw.spanEnd), Segment: outOfView})
	} else if len(steps) > 1 && steps[0].Segment == steps[len(steps)-1].Segment {
		// Отрезок, пересекающий начальный луч, не должен давать два клина.
		steps = steps[1:]
	}
	return append(steps, steps[0]), nil
}

func (sw *sweep) rel(p pixel.Vec) (geom.Angle, bool) {
	a, err := geom.FromVec(p.Sub(sw.origin))
	if err != nil {
		return geom.Angle{}, false
	}
	rel := a.Minus(sw.start)
	if rel.Equal(geom.Zero) {
		// Шум вокруг нуля иначе уехал бы в конец кругового порядка.
		return geom.Zero, true
	}
	return rel, true
}

func (sw *sweep) abs(rel geom.Angle) geom.Angle { return rel.Plus(sw.start) }

// inSpan сообщает, лежит ли относительный угол строго внутри развёртки.
// Угол, равный концу поля зрения с допуском, внутрь не попадает.
func (sw *sweep) inSpan(rel geom.Angle) bool {
	return sw.span >= FullCircle || rel.Less(sw.spanEnd)
}

// addSegment регистрирует события отрезка. Отрезок открывается на угле B и
// закрывается на угле A (A видна левее B). Неверно ориентированные отрезки
// и отрезки целиком вне поля зрения отбрасываются.
func (sw *sweep) addSegment(s *geom.TypedSegment) {
	if s.B.Sub(sw.origin).Cross(s.A.Sub(sw.origin)) <= 0 {
		return
	}
	open, ok1 := sw.rel(s.B)
	closeAt, ok2 := sw.rel(s.A)
	if !ok1 || !ok2 || open.Equal(closeAt) {
		return
	}

	if closeAt.Less(open) {
		// Отрезок пересекает начальный луч: активен с самого начала.
		sw.active[s] = struct{}{}
		if sw.inSpan(closeAt) {
			sw.events = append(sw.events, event{rel: closeAt, seg: s})
		}
		if sw.inSpan(open) {
			sw.events = append(sw.events, event{rel: open, seg: s, open: true})
		}
		return
	}
	if !sw.inSpan(open) {
		return
	}
	sw.events = append(sw.events, event{rel: open, seg: s, open: true})
	if sw.inSpan(closeAt) {
		sw.events = append(sw.events, event{rel: closeAt, seg: s})
	}
}

// buildBorders сортирует события один раз и склеивает соседние с равным
// (в смысле Angle.Equal) углом в одну границу. Нулевая граница есть всегда.
func (sw *sweep) buildBorders() {
	sort.SliceStable(sw.events, func(i, j int) bool {
		return sw.events[i].rel.Less(sw.events[j].rel)
	})
	sw.borders = make([]*border, 0, len(sw.events)+1)
	sw.borders = append(sw.borders, &border{rel: geom.Zero})
	for _, e := range sw.events {
		b := sw.borders[len(sw.borders)-1]
		if !b.rel.Equal(e.rel) {
			b = &border{rel: e.rel}
			sw.borders = append(sw.borders, b)
		}
		if e.open {
			b.opens = append(b.opens, e.seg)
		} else {
			b.closes = append(b.closes, e.seg)
		}
	}
	sw.events = nil
}

// run обходит границы по возрастанию угла. На каждой границе сначала
// удаляются закрывающиеся отрезки, затем добавляются открывающиеся, после
// чего ближайший отрезок клина до следующей границы определяется по лучу-
// биссектрисе клина. Внутри клина ни один отрезок не начинается и не
// заканчивается, а пересекаться отрезки не должны, поэтому ответ на
// биссектрисе верен для всего клина.
func (sw *sweep) run() []Step {
	var steps []Step
	var current *geom.TypedSegment
	first := true

	for i, b := range sw.borders {
		for _, s := range b.closes {
			delete(sw.active, s)
		}
		for _, s := range b.opens {
			sw.active[s] = struct{}{}
		}

		from := b.rel.Radians()
		to := sw.span
		if i+1 < len(sw.borders) {
			to = sw.borders[i+1].rel.Radians()
		}
		nearest := sw.nearest(geom.FromRadians((from + to) / 2))

		if first || nearest != current {
			steps = append(steps, Step{Angle: sw.abs(b.rel), Segment: nearest})
			current = nearest
			first = false
		}
	}
	return steps
}

// nearest возвращает ближайший активный отрезок вдоль относительного луча rel.
// Точное равенство расстояний для непересекающихся отрезков внутри клина
// невозможно; если оно всё же случилось, порядок задаёт less, чтобы
// результат не зависел от обхода map.
func (sw *sweep) nearest(rel geom.Angle) *geom.TypedSegment {
	dir := sw.abs(rel)
	var best *geom.TypedSegment
	bestDist := math.Inf(1)
	for s := range sw.active {
		d := geom.RayDistance(s.Line, sw.origin, dir)
		if d < bestDist || (d == bestDist && best != nil && less(s, best)) {
			best, bestDist = s, d
		}
	}
	return best
}

// less задаёт детерминированный порядок на отрезках для разрешения
// точных совпадений расстояний.
func less(a, b *geom.TypedSegment) bool {
	if a.A.X != b.A.X {
		return a.A.X < b.A.X
	}
	if a.A.Y != b.A.Y {
		return a.A.Y < b.A.Y
	}
	if a.B.X != b.B.X {
		return a.B.X < b.B.X
	}
	return a.B.Y < b.B.Y
}
