package storage

import (
	"errors"
	"fmt"

	"geballer-core/internal/domain"
	"geballer-core/internal/geom"

	"github.com/faiface/pixel"
	"github.com/google/uuid"
)

// ErrInvalidScene: файл сцены разобран, но описывает невозможный уровень.
var ErrInvalidScene = errors.New("storage: invalid scene")

// Point: точка в файле сцены, пишется как [x, y].
type Point [2]float64

func (p Point) Vec() pixel.Vec { return pixel.V(p[0], p[1]) }

func pointOf(v pixel.Vec) Point { return Point{v.X, v.Y} }

// Scene: формат обмена уровнями и картами наблюдений. Стены
// ориентированы: видны справа от A→B.
type Scene struct {
	Level  int16         `yaml:"level"`
	Bounds [4]float64    `yaml:"bounds,flow"` // minX, minY, maxX, maxY
	Walls  []SegmentSpec `yaml:"walls"`
	Items  []ItemSpec    `yaml:"items,omitempty"`
	Agents []AgentSpec   `yaml:"agents,omitempty"`
}

type SegmentSpec struct {
	A        Point  `yaml:"a,flow"`
	B        Point  `yaml:"b,flow"`
	Category string `yaml:"category,omitempty"`
}

type ItemSpec struct {
	Kind   domain.ItemKind `yaml:"kind"`
	At     Point           `yaml:"at,flow"`
	Radius float64         `yaml:"radius,omitempty"`
}

type AgentSpec struct {
	ID     string  `yaml:"id,omitempty"`
	At     Point   `yaml:"at,flow"`
	Facing float64 `yaml:"facing,omitempty"`
}

// Rect возвращает границы уровня.
func (sc *Scene) Rect() pixel.Rect {
	return pixel.R(sc.Bounds[0], sc.Bounds[1], sc.Bounds[2], sc.Bounds[3])
}

// normalize проверяет сцену и заполняет умолчания: категорию стен и ID
// агентов.
func (sc *Scene) normalize() error {
	// 1. Границы
	if sc.Bounds[0] >= sc.Bounds[2] || sc.Bounds[1] >= sc.Bounds[3] {
		return fmt.Errorf("%w: empty bounds %v", ErrInvalidScene, sc.Bounds)
	}

	// 2. Стены
	for i := range sc.Walls {
		w := &sc.Walls[i]
		if w.A == w.B {
			return fmt.Errorf("%w: wall %d is a point", ErrInvalidScene, i)
		}
		if w.Category == "" {
			w.Category = domain.CategoryWall
		}
	}

	// 3. Агенты
	seen := make(map[string]bool, len(sc.Agents))
	for i := range sc.Agents {
		a := &sc.Agents[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if seen[a.ID] {
			return fmt.Errorf("%w: duplicate agent %s", ErrInvalidScene, a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

// Build создаёт уровень со стенами и предметами сцены. Агенты не
// размещаются: это делает движок.
func (sc *Scene) Build() (*domain.Level, error) {
	walls := make([]*geom.TypedSegment, 0, len(sc.Walls))
	for _, w := range sc.Walls {
		walls = append(walls, geom.NewTypedSegment(w.A.Vec(), w.B.Vec(), w.Category))
	}
	level := domain.NewLevel(sc.Level, sc.Rect(), walls)
	for i, it := range sc.Items {
		if _, err := level.AddItem(it.Kind, it.At.Vec(), it.Radius); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return level, nil
}

// Spawns возвращает стартовые точки агентов по ID.
func (sc *Scene) Spawns() map[string]pixel.Vec {
	out := make(map[string]pixel.Vec, len(sc.Agents))
	for _, a := range sc.Agents {
		out[a.ID] = a.At.Vec()
	}
	return out
}

// MapScene превращает карту наблюдений агента в сцену: увиденные
// подотрезки становятся стенами, увиденные круги: предметами.
func MapScene(level int16, bounds pixel.Rect, segments []*geom.TypedSegment, entities []*geom.Circle) *Scene {
	sc := &Scene{
		Level:  level,
		Bounds: [4]float64{bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y},
		Walls:  make([]SegmentSpec, 0, len(segments)),
	}
	for _, s := range segments {
		sc.Walls = append(sc.Walls, SegmentSpec{A: pointOf(s.A), B: pointOf(s.B), Category: s.Category})
	}
	for _, c := range entities {
		kind, err := domain.ParseKind(c.Category)
		if err != nil {
			continue
		}
		sc.Items = append(sc.Items, ItemSpec{Kind: kind, At: pointOf(c.Center), Radius: c.Radius})
	}
	return sc
}
