package dungeon

import (
	"fmt"
	"math/rand"

	"geballer-core/internal/domain"

	"github.com/faiface/pixel"
)

// Rect - Вспомогательная структура для комнаты (в клетках).
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.W && r.X+r.W >= other.X &&
		r.Y <= other.Y+other.H && r.Y+r.H >= other.Y
}

// interior перебирает клетки пола комнаты.
func (r Rect) interior(fn func(x, y int)) {
	for y := r.Y + 1; y < r.Y+r.H; y++ {
		for x := r.X + 1; x < r.X+r.W; x++ {
			fn(x, y)
		}
	}
}

// cellCenter: мировые координаты центра клетки. Клетка (x, y) занимает
// квадрат [x, x+1] × [y, y+1].
func cellCenter(x, y int) pixel.Vec {
	return pixel.V(float64(x)+0.5, float64(y)+0.5)
}

type placement struct {
	kind domain.ItemKind
	x, y int
}

// LevelBuilder предоставляет fluent API для создания уровней
type LevelBuilder struct {
	level  int16
	width  int
	height int
	rooms  []Rect
	floor  [][]bool // [y][x]
	items  []placement
	taken  map[[2]int]bool
	rng    *rand.Rand
}

// NewBuilder создает новый builder для уровня
func NewBuilder(level int16, rng *rand.Rand) *LevelBuilder {
	return &LevelBuilder{
		level:  level,
		width:  MapWidth,
		height: MapHeight,
		taken:  make(map[[2]int]bool),
		rng:    rng,
	}
}

// WithSize устанавливает размер карты
func (b *LevelBuilder) WithSize(width, height int) *LevelBuilder {
	b.width = width
	b.height = height
	return b
}

// WithRooms генерирует комнаты и коридоры
func (b *LevelBuilder) WithRooms(maxRooms int) *LevelBuilder {
	// Вся карта: камень
	b.floor = make([][]bool, b.height)
	for y := range b.floor {
		b.floor[y] = make([]bool, b.width)
	}

	b.rooms = make([]Rect, 0, maxRooms)
	for i := 0; i < maxRooms; i++ {
		w := b.randRange(MinSize, min(MaxSize, b.width-3))
		h := b.randRange(MinSize, min(MaxSize, b.height-3))
		x := b.randRange(1, b.width-w-2)
		y := b.randRange(1, b.height-h-2)

		newRoom := Rect{X: x, Y: y, W: w, H: h}

		failed := false
		for _, other := range b.rooms {
			if newRoom.Intersects(other) {
				failed = true
				break
			}
		}
		if failed {
			continue
		}

		newRoom.interior(func(x, y int) { b.floor[y][x] = true })

		// Соединяем с предыдущей комнатой
		if len(b.rooms) > 0 {
			prevX, prevY := b.rooms[len(b.rooms)-1].Center()
			currX, currY := newRoom.Center()

			if b.rng.Intn(2) == 0 {
				b.hCorridor(prevX, currX, prevY)
				b.vCorridor(prevY, currY, currX)
			} else {
				b.vCorridor(prevY, currY, prevX)
				b.hCorridor(prevX, currX, currY)
			}
		}
		b.rooms = append(b.rooms, newRoom)
	}
	return b
}

func (b *LevelBuilder) hCorridor(x1, x2, y int) {
	for x := min(x1, x2); x <= max(x1, x2); x++ {
		b.floor[y][x] = true
	}
}

func (b *LevelBuilder) vCorridor(y1, y2, x int) {
	for y := min(y1, y2); y <= max(y1, y2); y++ {
		b.floor[y][x] = true
	}
}

// Spawns резервирует n свободных клеток для дроидов: сначала центры
// комнат, потом остальной пол комнат по порядку.
func (b *LevelBuilder) Spawns(n int) []pixel.Vec {
	out := make([]pixel.Vec, 0, n)
	take := func(x, y int) {
		if len(out) < n && !b.taken[[2]int{x, y}] {
			b.taken[[2]int{x, y}] = true
			out = append(out, cellCenter(x, y))
		}
	}
	for _, r := range b.rooms {
		take(r.Center())
	}
	for _, r := range b.rooms {
		r.interior(take)
	}
	return out
}

// SpawnItems ставит count предметов вида kind в случайные комнаты (кроме
// первой). Центральные строка и столбец комнаты не занимаются: через них
// идут коридоры.
func (b *LevelBuilder) SpawnItems(kind domain.ItemKind, count int) *LevelBuilder {
	for i := 0; i < count && len(b.rooms) > 1; i++ {
		room := b.rooms[b.rng.Intn(len(b.rooms)-1)+1]
		cx, cy := room.Center()

		// Пробуем найти свободную клетку (макс 20 попыток)
		for attempt := 0; attempt < 20; attempt++ {
			x := room.X + 1 + b.rng.Intn(room.W-1)
			y := room.Y + 1 + b.rng.Intn(room.H-1)
			if x == cx || y == cy || b.taken[[2]int{x, y}] {
				continue
			}
			b.taken[[2]int{x, y}] = true
			b.items = append(b.items, placement{kind: kind, x: x, y: y})
			break
		}
	}
	return b
}

// PlaceFlag ставит флаг в центр последней комнаты, если клетка свободна.
func (b *LevelBuilder) PlaceFlag() *LevelBuilder {
	if len(b.rooms) < 2 {
		return b
	}
	x, y := b.rooms[len(b.rooms)-1].Center()
	if b.taken[[2]int{x, y}] {
		return b
	}
	b.taken[[2]int{x, y}] = true
	b.items = append(b.items, placement{kind: domain.KindFlag, x: x, y: y})
	return b
}

// IsFloor сообщает, проходима ли клетка. Всё за картой: камень.
func (b *LevelBuilder) IsFloor(x, y int) bool {
	if x < 0 || y < 0 || y >= len(b.floor) || x >= len(b.floor[y]) {
		return false
	}
	return b.floor[y][x]
}

func (b *LevelBuilder) Rooms() []Rect { return b.rooms }

// Build собирает уровень: стены: контур пола, предметы: по размещениям.
func (b *LevelBuilder) Build() (*domain.Level, error) {
	if len(b.rooms) == 0 {
		return nil, fmt.Errorf("dungeon: level %d has no rooms", b.level)
	}
	walls := Outline(b.width, b.height, b.IsFloor)
	level := domain.NewLevel(b.level, pixel.R(0, 0, float64(b.width), float64(b.height)), walls)

	for _, p := range b.items {
		if _, err := level.AddItem(p.kind, cellCenter(p.x, p.y), 0); err != nil {
			return nil, fmt.Errorf("dungeon: %w", err)
		}
	}
	return level, nil
}

func (b *LevelBuilder) randRange(min, max int) int {
	return b.rng.Intn(max-min+1) + min
}
