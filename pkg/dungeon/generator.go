package dungeon

import (
	"errors"
	"fmt"
	"math/rand"

	"geballer-core/internal/domain"

	"github.com/faiface/pixel"
)

// Константы генерации
const (
	MapWidth  = 48
	MapHeight = 32
	MaxRooms  = 8
	MinSize   = 4
	MaxSize   = 10
)

// ErrNoRoom: на уровне не хватило пола для всех дроидов.
var ErrNoRoom = errors.New("dungeon: not enough floor for spawns")

// Params: размеры и населённость уровня.
type Params struct {
	Width, Height int
	Rooms         int
	Droids        int
	Obstacles     int
	Enemies       int
}

func DefaultParams() Params {
	return Params{
		Width:     MapWidth,
		Height:    MapHeight,
		Rooms:     MaxRooms,
		Droids:    3,
		Obstacles: 4,
		Enemies:   2,
	}
}

// Generate создает уровень level. Зерно уровня: seed + level, так что
// один мастер-сид даёт воспроизводимую цепочку уровней.
func Generate(level int16, seed int64, p Params) (*domain.Level, []pixel.Vec, error) {
	rng := rand.New(rand.NewSource(seed + int64(level)))

	b := NewBuilder(level, rng).
		WithSize(p.Width, p.Height).
		WithRooms(p.Rooms)

	// Дроиды первыми, чтобы предметы не встали на стартовые клетки
	spawns := b.Spawns(p.Droids)
	if len(spawns) < p.Droids {
		return nil, nil, fmt.Errorf("%w: %d of %d", ErrNoRoom, len(spawns), p.Droids)
	}

	b.PlaceFlag().
		SpawnItems(domain.KindObstacle, p.Obstacles).
		SpawnItems(domain.KindEnemy, p.Enemies)

	lvl, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return lvl, spawns, nil
}
