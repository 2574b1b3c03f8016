package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"geballer-core/internal/domain"
	"geballer-core/internal/geom"
	"geballer-core/internal/navigation"
	"geballer-core/internal/network"
	"geballer-core/internal/perception"
	"geballer-core/internal/systems"
	"geballer-core/pkg/logger"

	"github.com/faiface/pixel"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownAgent = errors.New("engine: unknown agent")
	ErrAgentExists  = errors.New("engine: agent already exists")
	ErrMissingSpawn = errors.New("engine: no spawn point for agent")
)

// searchMargin: запас радиуса снимка препятствий сверх расстояния до цели.
const searchMargin = 2.0

// World: цикл симуляции одного уровня: агенты смотрят, запоминают,
// получают пути из фона и идут по ним.
type World struct {
	mu sync.RWMutex

	cfg    Config
	level  *domain.Level
	agents map[string]*Agent
	order  []string
	pool   *navigation.Pool
	hub    *network.Broadcaster
	tick   uint64
	log    *logrus.Entry
}

// NewWorld создаёт мир. hub может быть nil (без рассылки).
func NewWorld(cfg Config, level *domain.Level, pool *navigation.Pool, hub *network.Broadcaster) *World {
	return &World{
		cfg:    cfg,
		level:  level,
		agents: make(map[string]*Agent),
		pool:   pool,
		hub:    hub,
		log:    logger.Log.WithField("component", "world"),
	}
}

// Spawn размещает нового дроида. Пустой id заменяется сгенерированным.
func (w *World) Spawn(id string, at pixel.Vec, facing float64) (*Agent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := w.agents[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentExists, id)
	}
	it, err := w.level.AddItem(domain.KindDroid, at, 0)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", id, err)
	}

	a := &Agent{
		ID:          id,
		Item:        it.ID,
		Facing:      facing,
		FieldOfView: domain.FieldOfView,
		Speeds:      navigation.Speeds{Forward: domain.ForwardSpeed, Turn: domain.TurnSpeed},
		Memory:      perception.NewObservationMap(domain.TrackedCategories()...),
		Nav:         navigation.NewNavigator(id, w.pool),
	}
	w.agents[id] = a
	w.order = append(w.order, id)

	w.log.WithFields(logrus.Fields{
		"agent": id,
		"item":  it.ID,
		"x":     at.X,
		"y":     at.Y,
	}).Info("agent spawned")
	return a, nil
}

// MoveTo просит агента дойти до target. Поиск пути уходит в фон; если
// предыдущий поиск ещё не завершён, запрос игнорируется (false).
func (w *World) MoveTo(id string, target pixel.Vec) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, ok := w.agents[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	return w.moveTo(a, target), nil
}

func (w *World) moveTo(a *Agent, target pixel.Vec) bool {
	if !w.request(a, target) {
		return false
	}
	a.Target = &target
	a.Path = nil
	return true
}

// request снимает копии препятствий вокруг агента и запускает поиск.
func (w *World) request(a *Agent, target pixel.Vec) bool {
	it := w.level.Item(a.Item)
	if it == nil {
		return false
	}
	radius := math.Max(domain.SearchRadius, target.Sub(it.Position()).Len()+searchMargin)
	walls, obstacles := w.level.Snapshot(it.ID, it.Position(), radius)
	lattice := navigation.NewLattice(it.Body, a.Facing, a.Speeds, w.level.Bounds, walls, obstacles)

	gen := a.generation + 1
	if !a.Nav.Request(gen, func() []navigation.Leg { return lattice.FindPathTo(target) }) {
		return false
	}
	a.generation = gen
	a.replan = false
	return true
}

// Tick выполняет один шаг симуляции для всех агентов.
func (w *World) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tick++
	dt := w.cfg.Tick.Seconds()
	for _, id := range w.order {
		a := w.agents[id]
		it := w.level.Item(a.Item)
		if it == nil {
			continue
		}

		// 1. Забираем готовый путь
		if res, ok := a.Nav.Poll(a.generation); ok {
			w.applyResult(a, res)
		}

		// 2. Перепланирование после столкновения
		if a.replan && a.Target != nil && a.Nav.State() == navigation.StateIdle {
			w.request(a, *a.Target)
		}

		// 2a. Разведка, если агенту нечем заняться
		if w.cfg.Explore {
			w.explore(a)
		}

		// 3. Движение
		w.advance(a, it, dt)

		// 4. Взгляд и память
		w.observe(a, it)

		// 5. Рассылка
		if w.hub != nil && w.hub.HasSubscriber(a.ID) {
			w.hub.SendTo(a.ID, w.buildUpdate(a))
		}
	}
}

func (w *World) applyResult(a *Agent, res navigation.Result) {
	entry := w.log.WithFields(logrus.Fields{
		"agent":      a.ID,
		"generation": res.Generation,
	})
	switch {
	case res.Err != nil:
		entry.WithError(res.Err).Warn("path search aborted")
	case len(res.Path) == 0:
		entry.Info("target unreachable")
		a.Target = nil
		a.Path = nil
	default:
		// Первый отрезок нулевой: это текущая позиция.
		a.Path = res.Path[1:]
		entry.WithField("legs", len(a.Path)).Debug("path accepted")
	}
}

// advance ведёт агента по пути на расстояние, доступное за dt.
func (w *World) advance(a *Agent, it *domain.Item, dt float64) {
	budget := a.Speeds.Forward * dt
	for budget > geom.Epsilon && len(a.Path) > 0 {
		step := systems.CalculateMove(it.Position(), a.Facing, a.Path[0], budget)

		if err := w.level.MoveItem(it.ID, step.To); err != nil {
			w.log.WithFields(logrus.Fields{
				"agent": a.ID,
				"x":     step.To.X,
				"y":     step.To.Y,
			}).WithError(err).Info("path blocked, replanning")
			a.Path = nil
			a.replan = true
			return
		}
		a.Facing = step.Facing

		if step.LegDone {
			a.Path = a.Path[1:]
		}
		budget -= step.Used
	}

	if a.Target != nil && len(a.Path) == 0 && it.Position() == *a.Target {
		w.log.WithField("agent", a.ID).Debug("target reached")
		a.Target = nil
	}
}

// explore даёт праздному агенту разведочную цель по последнему наблюдению.
func (w *World) explore(a *Agent) {
	if a.Target != nil || len(a.Path) > 0 || a.Nav.State() != navigation.StateIdle {
		return
	}
	action, target, turn := systems.ComputeDroidAction(a.Last, w.level.Bounds, a.FieldOfView)
	switch action {
	case systems.ActionMove:
		w.moveTo(a, target)
	case systems.ActionTurn:
		a.Facing = math.Mod(a.Facing+turn, 2*math.Pi)
	}
}

// observe строит наблюдение агента и добавляет его в память.
func (w *World) observe(a *Agent, it *domain.Item) {
	segments, entities := w.level.SegmentsFor(it.Position(), it.ID)
	v := perception.Viewer{Position: it.Position(), Facing: a.Facing, FieldOfView: a.FieldOfView}

	obs, err := perception.Observe(v, segments, entities)
	if err != nil {
		w.log.WithField("agent", a.ID).WithError(err).Error("observation failed")
		a.Last = nil
		return
	}
	a.Last = obs
	if err := a.Memory.AddObservation(obs); err != nil {
		w.log.WithField("agent", a.ID).WithError(err).Error("observation map rejected triangle")
	}
}

// ChangeLevel переводит всех агентов на новый уровень. spawns задаёт
// стартовую точку каждого агента. Память и пути сбрасываются, а
// незавершённые поиски становятся устаревшими.
func (w *World) ChangeLevel(level *domain.Level, spawns map[string]pixel.Vec) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, id := range w.order {
		at, ok := spawns[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingSpawn, id)
		}
		if !level.Bounds.Contains(at) {
			return fmt.Errorf("%w: agent %s at %v", domain.ErrOutOfBounds, id, at)
		}
	}

	w.level = level
	for _, id := range w.order {
		a := w.agents[id]
		it, err := level.AddItem(domain.KindDroid, spawns[id], 0)
		if err != nil {
			return fmt.Errorf("respawn %s: %w", id, err)
		}
		a.Item = it.ID
		a.forget()
	}

	w.log.WithFields(logrus.Fields{
		"level":  level.ID,
		"agents": len(w.order),
	}).Info("level changed")
	return nil
}

// Run крутит Tick с периодом cfg.Tick по часам пула до отмены ctx.
func (w *World) Run(ctx context.Context) {
	clock := w.pool.Clock()
	w.log.WithField("tick", w.cfg.Tick).Info("world loop started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("world loop stopped")
			return
		case <-clock.After(w.cfg.Tick):
			w.Tick()
		}
	}
}

// TickCount: номер последнего выполненного тика.
func (w *World) TickCount() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tick
}

// Level возвращает текущий уровень. Изменять его можно только через World.
func (w *World) Level() *domain.Level {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.level
}

// AgentIDs возвращает ID агентов в отсортированном порядке.
func (w *World) AgentIDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ids := make([]string, len(w.order))
	copy(ids, w.order)
	sort.Strings(ids)
	return ids
}

// Inspect вызывает fn с агентом под блокировкой мира (для отладки).
func (w *World) Inspect(id string, fn func(*Agent)) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.agents[id]
	if !ok {
		return false
	}
	fn(a)
	return true
}

// Memory возвращает копию карты агента и уровень, к которому она относится.
func (w *World) Memory(id string) (*domain.Level, []*geom.TypedSegment, []*geom.Circle, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.agents[id]
	if !ok {
		return nil, nil, nil, false
	}
	segments := append([]*geom.TypedSegment(nil), a.Memory.Segments()...)
	entities := append([]*geom.Circle(nil), a.Memory.Entities()...)
	return w.level, segments, entities, true
}

// WithLevel вызывает fn с текущим уровнем под блокировкой мира.
func (w *World) WithLevel(fn func(*domain.Level)) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	fn(w.level)
}
