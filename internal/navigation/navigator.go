package navigation

import (
	"context"
	"sync"
	"time"

	"geballer-core/pkg/logger"

	"github.com/jdeal-mediamath/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// State: состояние фонового поиска одного агента.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateResultReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateResultReady:
		return "result-ready"
	}
	return "unknown"
}

// Result: итог одного поиска. Path == nil означает "цель недостижима".
// Err != nil: поиск не был выполнен (пул закрыт).
type Result struct {
	Generation uint64
	Path       []Leg
	Requested  time.Time
	Finished   time.Time
	Err        error
}

// Took: сколько времени прошло от запроса до готовности результата.
func (r Result) Took() time.Duration { return r.Finished.Sub(r.Requested) }

// Pool ограничивает число одновременно выполняемых поисков на весь мир.
type Pool struct {
	sem    *semaphore.Weighted
	clock  clockwork.Clock
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool создаёт пул на workers параллельных поисков (минимум один).
// clock == nil: реальные часы.
func NewPool(workers int64, clock clockwork.Clock) *Pool {
	if workers < 1 {
		workers = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:    semaphore.NewWeighted(workers),
		clock:  clock,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Clock возвращает часы пула.
func (p *Pool) Clock() clockwork.Clock { return p.clock }

// run выполняет fn в отдельной горутине, дождавшись свободного слота.
// Если пул закрыт раньше, чем слот освободился (или до вызова run), fn не
// вызывается, а done получает ошибку контекста.
func (p *Pool) run(fn func(), done func(error)) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		done(p.ctx.Err())
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			done(err)
			return
		}
		defer p.sem.Release(1)
		fn()
		done(nil)
	}()
}

// Wait блокируется, пока не завершатся все запущенные поиски.
func (p *Pool) Wait() { p.wg.Wait() }

// Close отменяет ожидающие слота поиски и дожидается выполняющихся.
// Поиски, запрошенные после Close, сразу завершаются ошибкой контекста.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
}

// Navigator: конечный автомат "не больше одного поиска на агента":
// Idle → Searching → ResultReady → Idle. Результат отдаётся один раз;
// устаревший (другое поколение) молча выбрасывается. Прерывания поиска нет.
type Navigator struct {
	mu     sync.Mutex
	pool   *Pool
	state  State
	result Result
	log    *logrus.Entry
}

// NewNavigator создаёт навигатор агента owner поверх общего пула.
func NewNavigator(owner string, pool *Pool) *Navigator {
	return &Navigator{
		pool: pool,
		log: logger.Log.WithFields(logrus.Fields{
			"component": "navigator",
			"agent":     owner,
		}),
	}
}

// State возвращает текущее состояние.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Request запускает search в фоне. Если предыдущий поиск ещё не забран
// через Poll, запрос игнорируется и возвращается false.
func (n *Navigator) Request(generation uint64, search func() []Leg) bool {
	n.mu.Lock()
	if n.state != StateIdle {
		state := n.state
		n.mu.Unlock()
		n.log.WithFields(logrus.Fields{
			"generation": generation,
			"state":      state,
		}).Warn("path search already in flight, request ignored")
		return false
	}
	n.state = StateSearching
	n.result = Result{Generation: generation, Requested: n.pool.clock.Now()}
	n.mu.Unlock()

	var path []Leg
	n.pool.run(func() { path = search() }, func(err error) {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.result.Path = path
		n.result.Err = err
		n.result.Finished = n.pool.clock.Now()
		n.state = StateResultReady
	})
	return true
}

// Poll забирает готовый результат. Второе значение false, если результата
// нет или он относится к другому поколению. В обоих последних случаях
// навигатор возвращается в Idle.
func (n *Navigator) Poll(currentGeneration uint64) (Result, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != StateResultReady {
		return Result{}, false
	}
	res := n.result
	n.result = Result{}
	n.state = StateIdle

	if res.Generation != currentGeneration {
		n.log.WithFields(logrus.Fields{
			"generation": res.Generation,
			"current":    currentGeneration,
		}).Debug("stale path dropped")
		return Result{}, false
	}
	n.log.WithFields(logrus.Fields{
		"generation": res.Generation,
		"legs":       len(res.Path),
		"took":       res.Took(),
	}).Debug("path ready")
	return res, true
}
