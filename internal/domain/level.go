package domain

import (
	"errors"
	"fmt"

	"geballer-core/internal/geom"

	"github.com/faiface/pixel"
)

var (
	ErrOutOfBounds = errors.New("domain: position out of level bounds")
	ErrUnknownItem = errors.New("domain: unknown item")
	ErrBlocked     = errors.New("domain: path blocked")
)

// Level: уровень: стены в виде ориентированных отрезков (видны справа от
// A→B) и реестр предметов. Не потокобезопасен: им владеет цикл мира.
type Level struct {
	ID     int16
	Bounds pixel.Rect
	Walls  []*geom.TypedSegment

	items     map[ItemID]*Item
	order     []ItemID
	nextIndex uint64
}

// NewLevel создаёт пустой уровень со стенами walls.
func NewLevel(id int16, bounds pixel.Rect, walls []*geom.TypedSegment) *Level {
	return &Level{
		ID:     id,
		Bounds: bounds.Norm(),
		Walls:  walls,
		items:  make(map[ItemID]*Item),
	}
}

// AddItem размещает новый предмет и выдаёт ему ID. radius <= 0: радиус
// по умолчанию для вида.
func (l *Level) AddItem(kind ItemKind, center pixel.Vec, radius float64) (*Item, error) {
	if !l.Bounds.Contains(center) {
		return nil, fmt.Errorf("%w: %s at %v", ErrOutOfBounds, kind, center)
	}
	if radius <= 0 {
		radius = DefaultRadius(kind)
	}
	l.nextIndex++
	it := &Item{
		ID:   PackItemID(kind, l.ID, l.nextIndex),
		Kind: kind,
		Body: geom.Circle{Center: center, Radius: radius, Category: kind.Category()},
	}
	l.items[it.ID] = it
	l.order = append(l.order, it.ID)
	return it, nil
}

// Item ищет предмет по ID.
func (l *Level) Item(id ItemID) *Item {
	return l.items[id]
}

// RemoveItem удаляет предмет из реестра.
func (l *Level) RemoveItem(id ItemID) bool {
	if _, ok := l.items[id]; !ok {
		return false
	}
	delete(l.items, id)
	for i, other := range l.order {
		if other == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// Items возвращает предметы в порядке добавления.
func (l *Level) Items() []*Item {
	out := make([]*Item, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.items[id])
	}
	return out
}

// MoveItem передвигает предмет по прямой в to, если путь свободен.
func (l *Level) MoveItem(id ItemID, to pixel.Vec) error {
	// 1. Проверка предмета и границ
	it := l.items[id]
	if it == nil {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	if !l.Bounds.Contains(to) {
		return fmt.Errorf("%w: %s to %v", ErrOutOfBounds, id, to)
	}

	// 2. Столкновения по всей траектории
	path := pixel.L(it.Body.Center, to)
	if it.Kind.Blocks() && l.Collides(id, path, it.Body.Radius) {
		return fmt.Errorf("%w: %s to %v", ErrBlocked, id, to)
	}

	// 3. Перемещаем; поворот тела вдоль движения
	if a, err := geom.FromVec(to.Sub(it.Body.Center)); err == nil {
		it.Body.Rotation = a.Radians()
	}
	it.Body.Center = to
	return nil
}

// Collides проверяет, задевает ли тело радиуса radius, идущее по path,
// стену или блокирующий предмет (кроме self).
func (l *Level) Collides(self ItemID, path pixel.Line, radius float64) bool {
	for _, w := range l.Walls {
		if geom.SweepHits(path, radius, w.Line) {
			return true
		}
	}
	for _, id := range l.order {
		it := l.items[id]
		if id == self || !it.Kind.Blocks() {
			continue
		}
		if it.Body.Overlaps(path, radius) {
			return true
		}
	}
	return false
}

// SegmentsFor собирает всё, что может увидеть наблюдатель в observer:
// стены и силуэты видимых предметов (кроме self). Второе значение
// связывает силуэты с телами предметов. Предметы, внутри которых стоит
// наблюдатель, пропускаются.
func (l *Level) SegmentsFor(observer pixel.Vec, self ItemID) ([]*geom.TypedSegment, map[*geom.TypedSegment]*geom.Circle) {
	segments := make([]*geom.TypedSegment, 0, len(l.Walls)+len(l.order))
	segments = append(segments, l.Walls...)
	entities := make(map[*geom.TypedSegment]*geom.Circle)

	for _, id := range l.order {
		it := l.items[id]
		if id == self || !it.Kind.Visible() {
			continue
		}
		if it.Body.Center.Sub(observer).Len() <= it.Body.Radius {
			continue
		}
		sil, ok := it.Body.Silhouette(observer)
		if !ok {
			continue
		}
		segments = append(segments, sil)
		entities[sil] = &it.Body
	}
	return segments, entities
}

// Snapshot копирует стены и блокирующие предметы (кроме self) в радиусе
// radius от center. Копии не меняются вместе с уровнем, поэтому их можно
// отдавать фоновому поиску пути.
func (l *Level) Snapshot(self ItemID, center pixel.Vec, radius float64) ([]pixel.Line, []geom.Circle) {
	var walls []pixel.Line
	for _, w := range l.Walls {
		if geom.Distance(center, w.Line) <= radius {
			walls = append(walls, w.Line)
		}
	}
	var obstacles []geom.Circle
	for _, id := range l.order {
		it := l.items[id]
		if id == self || !it.Kind.Blocks() {
			continue
		}
		if it.Body.Center.Sub(center).Len()-it.Body.Radius <= radius {
			obstacles = append(obstacles, it.Body)
		}
	}
	return walls, obstacles
}
