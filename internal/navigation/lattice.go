package navigation

import (
	"math"

	"geballer-core/internal/geom"

	"github.com/faiface/pixel"
)

// targetReach: цель добавляется в соседи, если до неё не дальше одного
// диагонального шага решётки.
const targetReach = math.Sqrt2 + 1e-9

// Speeds: скорости агента: единиц уровня в секунду вперёд и радиан в
// секунду на разворот. Стоимости поиска измеряются во времени.
type Speeds struct {
	Forward float64
	Turn    float64
}

// Leg: позиция поиска: отрезок пути, которым агент пришёл в точку To.
// Направление прихода нужно, чтобы учитывать стоимость поворота.
type Leg struct {
	From pixel.Vec
	To   pixel.Vec
}

// Len: длина отрезка.
func (l Leg) Len() float64 { return l.To.Sub(l.From).Len() }

// Line: отрезок как pixel.Line.
func (l Leg) Line() pixel.Line { return pixel.L(l.From, l.To) }

// Heading: направление движения; ok=false для нулевого отрезка.
func (l Leg) Heading() (geom.Angle, bool) {
	a, err := geom.FromVec(l.To.Sub(l.From))
	return a, err == nil
}

// Lattice: модель движения круглого агента по целочисленной решётке.
// Хранит копии тела агента и ближайших препятствий, снятые в момент
// запроса, поэтому поиск может идти в фоне, пока мир меняется.
type Lattice struct {
	body      geom.Circle
	facing    geom.Angle
	speeds    Speeds
	bounds    pixel.Rect
	walls     []pixel.Line
	obstacles []geom.Circle
}

// NewLattice снимает копии всех входных данных.
func NewLattice(body geom.Circle, facing float64, speeds Speeds, bounds pixel.Rect, walls []pixel.Line, obstacles []geom.Circle) *Lattice {
	l := &Lattice{
		body:      body,
		facing:    geom.FromRadians(facing),
		speeds:    speeds,
		bounds:    bounds.Norm(),
		walls:     make([]pixel.Line, len(walls)),
		obstacles: make([]geom.Circle, len(obstacles)),
	}
	copy(l.walls, walls)
	copy(l.obstacles, obstacles)
	return l
}

// Collides проверяет, задевает ли тело агента, идущее по path, стену или
// препятствие.
func (l *Lattice) Collides(path pixel.Line) bool {
	for _, w := range l.walls {
		if geom.SweepHits(path, l.body.Radius, w) {
			return true
		}
	}
	for i := range l.obstacles {
		if l.obstacles[i].Overlaps(path, l.body.Radius) {
			return true
		}
	}
	return false
}

// Search строит задачу A* от текущей позиции тела до target.
func (l *Lattice) Search(target pixel.Vec) Search[Leg] {
	start := Leg{From: l.body.Center, To: l.body.Center}
	return Search[Leg]{
		Starts:    []Leg{start},
		IsTarget:  func(p Leg) bool { return p.To == target },
		Neighbors: func(p Leg) []Leg { return l.neighbors(p, target) },
		StepCost:  l.stepCost,
		Heuristic: func(p Leg) float64 { return p.To.Sub(target).Len() / l.speeds.Forward },
	}
}

// FindPathTo ищет путь до target. Первый элемент: нулевой отрезок в
// текущей позиции; nil, если цель недостижима.
func (l *Lattice) FindPathTo(target pixel.Vec) []Leg {
	path, _ := findPath(l.Search(target))
	return path
}

// neighbors: 8 соседних узлов решётки вокруг p.To и, если близко, сама цель.
func (l *Lattice) neighbors(p Leg, target pixel.Vec) []Leg {
	base := pixel.V(math.Round(p.To.X), math.Round(p.To.Y))
	out := make([]Leg, 0, 9)
	for dx := -1.0; dx <= 1; dx++ {
		for dy := -1.0; dy <= 1; dy++ {
			next := base.Add(pixel.V(dx, dy))
			if next == p.To {
				continue
			}
			out = l.appendLeg(out, Leg{From: p.To, To: next})
		}
	}
	if target != p.To && target.Sub(p.To).Len() <= targetReach {
		out = l.appendLeg(out, Leg{From: p.To, To: target})
	}
	return out
}

func (l *Lattice) appendLeg(out []Leg, leg Leg) []Leg {
	if !l.bounds.Contains(leg.To) || l.Collides(leg.Line()) {
		return out
	}
	return append(out, leg)
}

// stepCost: время на разворот от направления прихода в prev плюс время
// на проход next.
func (l *Lattice) stepCost(prev, next Leg) float64 {
	from, ok := prev.Heading()
	if !ok {
		from = l.facing
	}
	cost := next.Len() / l.speeds.Forward
	if to, ok := next.Heading(); ok {
		cost += turnAngle(from, to) / l.speeds.Turn
	}
	return cost
}

// turnAngle: кратчайший поворот между направлениями, в [0, π].
func turnAngle(from, to geom.Angle) float64 {
	d := to.Minus(from).Radians()
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
