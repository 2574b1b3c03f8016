// Package navigation содержит обобщённый A*, решётчатую модель движения
// агента и фоновый навигатор, выполняющий поиски вне основного цикла.
package navigation

import "container/heap"

// Search описывает задачу поиска пути над позициями типа P.
//
// StartCost: стоимость самой стартовой позиции (шаг "из ниоткуда"), может
// быть nil. Heuristic обязана не переоценивать стоимость до ближайшей цели.
type Search[P comparable] struct {
	Starts    []P
	IsTarget  func(P) bool
	Neighbors func(P) []P
	StartCost func(P) float64
	StepCost  func(from, to P) float64
	Heuristic func(P) float64
}

// FindPath выполняет A* и возвращает путь от стартовой позиции до первой
// найденной цели включительно. Если цель недостижима, возвращается nil:
// это обычный исход, а не ошибка.
func FindPath[P comparable](s Search[P]) []P {
	path, _ := findPath(s)
	return path
}

// findPath дополнительно сообщает число раскрытых узлов (для логов навигатора).
func findPath[P comparable](s Search[P]) ([]P, int) {
	open := make(openQueue[P], 0, len(s.Starts))
	heap.Init(&open)
	known := make(map[P]*node[P])
	closed := make(map[P]struct{})

	// 1. Стартовые позиции. Дубликаты оставляем с меньшей стоимостью.
	for _, p := range s.Starts {
		cost := 0.0
		if s.StartCost != nil {
			cost = s.StartCost(p)
		}
		if n, ok := known[p]; ok {
			if cost < n.cost {
				open.update(n, nil, cost, cost+s.Heuristic(p))
			}
			continue
		}
		n := &node[P]{pos: p, cost: cost, priority: cost + s.Heuristic(p)}
		known[p] = n
		heap.Push(&open, n)
	}

	// 2. Основной цикл.
	expanded := 0
	for open.Len() > 0 {
		cur := heap.Pop(&open).(*node[P])
		if s.IsTarget(cur.pos) {
			return reconstruct(cur), expanded
		}
		closed[cur.pos] = struct{}{}
		expanded++

		for _, next := range s.Neighbors(cur.pos) {
			if _, done := closed[next]; done {
				continue
			}
			cost := cur.cost + s.StepCost(cur.pos, next)
			n, ok := known[next]
			if !ok {
				n = &node[P]{pos: next, prev: cur, cost: cost, priority: cost + s.Heuristic(next)}
				known[next] = n
				heap.Push(&open, n)
				continue
			}
			if cost < n.cost {
				open.update(n, cur, cost, cost+(n.priority-n.cost))
			}
		}
	}
	return nil, expanded
}

// reconstruct разворачивает цепочку предшественников в путь от старта.
func reconstruct[P comparable](end *node[P]) []P {
	var path []P
	for n := end; n != nil; n = n.prev {
		path = append(path, n.pos)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
