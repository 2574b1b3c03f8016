package storage

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"geballer-core/internal/domain"
	"geballer-core/internal/geom"

	"github.com/faiface/pixel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScene = `
level: 2
bounds: [0, 0, 10, 10]
walls:
  - {a: [0, 0], b: [0, 10]}
  - {a: [0, 10], b: [10, 10], category: door}
items:
  - {kind: obstacle, at: [5, 5]}
  - {kind: flag, at: [8, 8], radius: 0.3}
agents:
  - {id: alpha, at: [2, 2], facing: 1.5}
  - {at: [3, 3]}
`

func TestReadScene(t *testing.T) {
	sc, err := ReadScene(strings.NewReader(sampleScene))
	require.NoError(t, err)

	assert.Equal(t, int16(2), sc.Level)
	assert.Equal(t, pixel.R(0, 0, 10, 10), sc.Rect())

	require.Len(t, sc.Walls, 2)
	assert.Equal(t, domain.CategoryWall, sc.Walls[0].Category, "категория по умолчанию")
	assert.Equal(t, "door", sc.Walls[1].Category)

	require.Len(t, sc.Items, 2)
	assert.Equal(t, domain.KindObstacle, sc.Items[0].Kind)
	assert.Equal(t, domain.KindFlag, sc.Items[1].Kind)

	require.Len(t, sc.Agents, 2)
	assert.Equal(t, "alpha", sc.Agents[0].ID)
	_, err = uuid.Parse(sc.Agents[1].ID)
	assert.NoError(t, err, "агенту без id выдаётся uuid")

	spawns := sc.Spawns()
	assert.Equal(t, pixel.V(2, 2), spawns["alpha"])
	assert.Equal(t, pixel.V(3, 3), spawns[sc.Agents[1].ID])
}

func TestScene_Build(t *testing.T) {
	sc, err := ReadScene(strings.NewReader(sampleScene))
	require.NoError(t, err)

	level, err := sc.Build()
	require.NoError(t, err)

	assert.Equal(t, int16(2), level.ID)
	require.Len(t, level.Walls, 2)
	assert.Equal(t, pixel.V(0, 10), level.Walls[0].B)

	items := level.Items()
	require.Len(t, items, 2)
	assert.Equal(t, domain.ObstacleRadius, items[0].Body.Radius)
	assert.Equal(t, 0.3, items[1].Body.Radius)
	assert.Equal(t, int16(2), items[1].ID.Level())
}

func TestReadScene_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		invalid bool // ожидается именно ErrInvalidScene
	}{
		{
			name:    "Empty bounds",
			yaml:    "level: 1\nbounds: [5, 0, 5, 10]\n",
			invalid: true,
		},
		{
			name:    "Point wall",
			yaml:    "level: 1\nbounds: [0, 0, 5, 5]\nwalls:\n  - {a: [1, 1], b: [1, 1]}\n",
			invalid: true,
		},
		{
			name:    "Duplicate agent",
			yaml:    "level: 1\nbounds: [0, 0, 5, 5]\nagents:\n  - {id: a, at: [1, 1]}\n  - {id: a, at: [2, 2]}\n",
			invalid: true,
		},
		{
			name: "Unknown kind",
			yaml: "level: 1\nbounds: [0, 0, 5, 5]\nitems:\n  - {kind: dragon, at: [1, 1]}\n",
		},
		{
			name: "Unknown field",
			yaml: "level: 1\nbounds: [0, 0, 5, 5]\ncolor: red\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadScene(strings.NewReader(tt.yaml))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidScene)
			}
		})
	}
}

func TestScene_BuildItemOutOfBounds(t *testing.T) {
	sc, err := ReadScene(strings.NewReader("level: 1\nbounds: [0, 0, 5, 5]\nitems:\n  - {kind: enemy, at: [7, 1]}\n"))
	require.NoError(t, err)

	_, err = sc.Build()
	assert.ErrorIs(t, err, domain.ErrOutOfBounds)
}

func TestWriteScene_RoundTrip(t *testing.T) {
	sc, err := ReadScene(strings.NewReader(sampleScene))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteScene(&buf, sc))
	assert.Contains(t, buf.String(), "kind: obstacle", "вид пишется строкой")

	back, err := ReadScene(&buf)
	require.NoError(t, err)
	assert.Equal(t, sc, back)
}

func TestMapScene(t *testing.T) {
	segments := []*geom.TypedSegment{
		geom.NewTypedSegment(pixel.V(0, 4), pixel.V(2, 4), domain.CategoryWall),
	}
	entities := []*geom.Circle{
		{Center: pixel.V(3, 1), Radius: 0.35, Category: domain.KindDroid.Category()},
		{Center: pixel.V(1, 1), Radius: 1, Category: "lava"},
	}

	sc := MapScene(3, pixel.R(0, 0, 6, 6), segments, entities)

	assert.Equal(t, int16(3), sc.Level)
	assert.Equal(t, [4]float64{0, 0, 6, 6}, sc.Bounds)
	require.Len(t, sc.Walls, 1)
	assert.Equal(t, Point{0, 4}, sc.Walls[0].A)
	assert.Equal(t, Point{2, 4}, sc.Walls[0].B)
	require.Len(t, sc.Items, 1, "круги неизвестной категории пропускаются")
	assert.Equal(t, domain.KindDroid, sc.Items[0].Kind)
}

func TestSceneStore_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "maps")
	store := NewSceneStore(dir)

	sc := MapScene(1, pixel.R(0, 0, 4, 4), []*geom.TypedSegment{
		geom.NewTypedSegment(pixel.V(0, 0), pixel.V(0, 4), domain.CategoryWall),
	}, nil)

	path, err := store.SaveMap("alpha", sc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "map_alpha_lvl1.yaml"), path)

	// Абсолютный путь
	loaded, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, sc.Walls, loaded.Walls)

	// Относительный: от Dir
	loaded, err = store.Load("map_alpha_lvl1.yaml")
	require.NoError(t, err)
	assert.Equal(t, sc.Bounds, loaded.Bounds)

	_, err = store.Load("missing.yaml")
	assert.Error(t, err)
}
