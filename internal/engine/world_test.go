package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"geballer-core/internal/domain"
	"geballer-core/internal/geom"
	"geballer-core/internal/navigation"
	"geballer-core/internal/network"
	"geballer-core/internal/systems"
	"geballer-core/pkg/api"

	"github.com/faiface/pixel"
	"github.com/google/uuid"
	"github.com/jdeal-mediamath/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outline строит замкнутый контур по точкам в заданном порядке.
func outline(category string, pts ...pixel.Vec) []*geom.TypedSegment {
	var out []*geom.TypedSegment
	for i := range pts {
		out = append(out, geom.NewTypedSegment(pts[i], pts[(i+1)%len(pts)], category))
	}
	return out
}

// roomLevel: квадратная комната size×size, стены по часовой стрелке.
func roomLevel(id int16, size float64, extra ...*geom.TypedSegment) *domain.Level {
	walls := outline(domain.CategoryWall,
		pixel.V(0, 0), pixel.V(0, size), pixel.V(size, size), pixel.V(size, 0))
	return domain.NewLevel(id, pixel.R(0, 0, size, size), append(walls, extra...))
}

type fixture struct {
	world *World
	pool  *navigation.Pool
	hub   *network.Broadcaster
}

func newFixture(t *testing.T, level *domain.Level) fixture {
	t.Helper()
	cfg := NewConfig()
	cfg.Tick = 100 * time.Millisecond
	pool := navigation.NewPool(1, clockwork.NewFakeClock())
	t.Cleanup(pool.Close)
	hub := network.NewBroadcaster()
	return fixture{world: NewWorld(cfg, level, pool, hub), pool: pool, hub: hub}
}

// runUntil тикает мир, дожидаясь фоновых поисков, пока cond не выполнится.
func (f fixture) runUntil(t *testing.T, maxTicks int, cond func() bool) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		f.pool.Wait()
		f.world.Tick()
		if cond() {
			return
		}
	}
	t.Fatalf("condition not reached in %d ticks", maxTicks)
}

func TestWorld_Spawn(t *testing.T) {
	f := newFixture(t, roomLevel(1, 10))

	a, err := f.world.Spawn("", pixel.V(2, 2), 0)
	require.NoError(t, err)
	_, err = uuid.Parse(a.ID)
	assert.NoError(t, err, "generated id is a uuid")
	assert.Equal(t, domain.KindDroid, a.Item.Kind())

	_, err = f.world.Spawn(a.ID, pixel.V(3, 3), 0)
	assert.ErrorIs(t, err, ErrAgentExists)
	_, err = f.world.Spawn("far", pixel.V(30, 3), 0)
	assert.ErrorIs(t, err, domain.ErrOutOfBounds)

	assert.Equal(t, []string{a.ID}, f.world.AgentIDs())
}

func TestWorld_TickObservesAndPublishes(t *testing.T) {
	f := newFixture(t, roomLevel(1, 10))
	_, err := f.world.Spawn("r2", pixel.V(2, 2), 0)
	require.NoError(t, err)
	updates := f.hub.Register("r2")

	f.world.Tick()

	require.Len(t, updates, 1)
	u := <-updates
	assert.Equal(t, "TICK", u.Type)
	assert.Equal(t, uint64(1), u.Tick)
	assert.NotEmpty(t, u.Triangles)
	assert.Equal(t, 2.0, u.Agent.Position.X)

	view, ok := f.world.View("r2")
	require.True(t, ok)
	assert.Greater(t, view.KnownSegments, 0)
	assert.Equal(t, "idle", view.Navigator)

	m, ok := f.world.MapOf("r2")
	require.True(t, ok)
	assert.Len(t, m.Segments, view.KnownSegments)
	for _, s := range m.Segments {
		assert.Equal(t, domain.CategoryWall, s.Category)
	}
}

func TestWorld_MoveTo(t *testing.T) {
	f := newFixture(t, roomLevel(1, 10))
	a, err := f.world.Spawn("r2", pixel.V(2, 2), math.Pi/2)
	require.NoError(t, err)
	target := pixel.V(5, 2)

	ok, err := f.world.MoveTo("r2", target)
	require.NoError(t, err)
	require.True(t, ok)

	// Пока результат не забран, новые запросы игнорируются.
	f.pool.Wait()
	ok, err = f.world.MoveTo("r2", pixel.V(7, 7))
	require.NoError(t, err)
	assert.False(t, ok)

	f.runUntil(t, 100, func() bool {
		v, _ := f.world.View("r2")
		return v.Target == nil
	})

	it := f.world.Level().Item(a.Item)
	assert.Equal(t, target, it.Position())
	f.world.Inspect("r2", func(a *Agent) {
		assert.Empty(t, a.Path)
		assert.InDelta(t, 0, a.Facing, 1e-9)
	})

	_, err = f.world.MoveTo("nobody", target)
	assert.ErrorIs(t, err, ErrUnknownAgent)
}

func TestWorld_UnreachableTarget(t *testing.T) {
	box := outline(domain.KindObstacle.Category(),
		pixel.V(6, 6), pixel.V(8, 6), pixel.V(8, 8), pixel.V(6, 8))
	f := newFixture(t, roomLevel(1, 10, box...))
	_, err := f.world.Spawn("r2", pixel.V(2, 2), 0)
	require.NoError(t, err)

	ok, err := f.world.MoveTo("r2", pixel.V(7, 7))
	require.NoError(t, err)
	require.True(t, ok)

	f.pool.Wait()
	f.world.Tick()

	view, _ := f.world.View("r2")
	assert.Nil(t, view.Target)
	assert.Zero(t, view.PathLegs)
	assert.Equal(t, "idle", view.Navigator)
}

func TestWorld_ReplansAroundNewObstacle(t *testing.T) {
	f := newFixture(t, roomLevel(1, 10))
	a, err := f.world.Spawn("r2", pixel.V(2, 2), 0)
	require.NoError(t, err)
	target := pixel.V(6, 2)

	ok, _ := f.world.MoveTo("r2", target)
	require.True(t, ok)
	f.pool.Wait()
	f.world.Tick()

	// Колонна появляется на уже выбранном пути.
	rock, err := f.world.Level().AddItem(domain.KindObstacle, pixel.V(4, 2), 0.5)
	require.NoError(t, err)

	f.runUntil(t, 200, func() bool {
		v, _ := f.world.View("r2")
		return v.Target == nil
	})
	assert.Equal(t, target, f.world.Level().Item(a.Item).Position())
	assert.Greater(t, a.Generation(), uint64(1), "path was requested again")
	assert.NotNil(t, f.world.Level().Item(rock.ID))
}

func TestWorld_ChangeLevel(t *testing.T) {
	f := newFixture(t, roomLevel(1, 10))
	_, err := f.world.Spawn("r2", pixel.V(2, 2), 0)
	require.NoError(t, err)
	f.world.Tick()

	ok, _ := f.world.MoveTo("r2", pixel.V(5, 2))
	require.True(t, ok)
	f.pool.Wait()

	next := roomLevel(2, 20)
	err = f.world.ChangeLevel(next, map[string]pixel.Vec{})
	assert.ErrorIs(t, err, ErrMissingSpawn)
	assert.Equal(t, int16(1), f.world.Level().ID)

	require.NoError(t, f.world.ChangeLevel(next, map[string]pixel.Vec{"r2": pixel.V(10, 10)}))
	f.world.Tick()

	view, _ := f.world.View("r2")
	assert.Equal(t, int16(2), view.Level)
	assert.Equal(t, 10.0, view.Position.X)
	assert.Equal(t, 10.0, view.Position.Y)
	assert.Nil(t, view.Target, "stale path dropped")
	assert.Zero(t, view.PathLegs)
	assert.Equal(t, "idle", view.Navigator)

	m, _ := f.world.MapOf("r2")
	require.NotEmpty(t, m.Segments)
	for _, s := range m.Segments {
		onOuterWall := s.A.X == 20 || s.A.Y == 20 || s.A.X == 0 || s.A.Y == 0
		assert.True(t, onOuterWall, "segment %v from new level", s)
	}
}

func TestWorld_Run(t *testing.T) {
	cfg := NewConfig()
	cfg.Tick = time.Millisecond
	pool := navigation.NewPool(1, nil)
	defer pool.Close()
	w := NewWorld(cfg, roomLevel(1, 10), pool, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return w.TickCount() >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestWorld_Explore(t *testing.T) {
	f := newFixture(t, roomLevel(1, 10))
	f.world.cfg.Explore = true
	_, err := f.world.Spawn("r2", pixel.V(2, 2), 0)
	require.NoError(t, err)

	var target *api.Vec
	f.runUntil(t, 5, func() bool {
		v, _ := f.world.View("r2")
		target = v.Target
		return target != nil
	})

	// Самый широкий из глубоких клиньев смотрит на восточную стену;
	// цель на полном разведочном шаге.
	assert.InDelta(t, systems.ExploreReach, pixel.V(target.X-2, target.Y-2).Len(), 1e-6)
	assert.Greater(t, target.X, 7.0)
	assert.Less(t, target.X, 10.0)
}

func TestWorld_Memory(t *testing.T) {
	f := newFixture(t, roomLevel(1, 10))
	_, err := f.world.Spawn("r2", pixel.V(2, 2), 0)
	require.NoError(t, err)
	f.world.Tick()

	lvl, segments, entities, ok := f.world.Memory("r2")
	require.True(t, ok)
	assert.Equal(t, int16(1), lvl.ID)
	assert.Empty(t, entities)

	view, _ := f.world.View("r2")
	assert.Len(t, segments, view.KnownSegments)

	_, _, _, ok = f.world.Memory("nobody")
	assert.False(t, ok)

	var walls int
	f.world.WithLevel(func(l *domain.Level) { walls = len(l.Walls) })
	assert.Equal(t, 4, walls)
}
