package navigation

import "container/heap"

// node: узел поиска: позиция, лучший известный путь до неё и приоритет
// в открытой очереди.
type node[P comparable] struct {
	pos      P
	prev     *node[P]
	cost     float64 // стоимость от старта
	priority float64 // cost + эвристика
	index    int     // индекс в куче (нужен для update)
}

// openQueue реализует heap.Interface и хранит узлы, ожидающие раскрытия.
type openQueue[P comparable] []*node[P]

func (q openQueue[P]) Len() int { return len(q) }

func (q openQueue[P]) Less(i, j int) bool {
	// MinHeap: раньше раскрывается узел с меньшей оценкой
	return q[i].priority < q[j].priority
}

func (q openQueue[P]) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *openQueue[P]) Push(x interface{}) {
	n := len(*q)
	item := x.(*node[P])
	item.index = n
	*q = append(*q, item)
}

func (q *openQueue[P]) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // избегаем утечки памяти
	item.index = -1 // для безопасности
	*q = old[0 : n-1]
	return item
}

// update переназначает узлу предшественника и стоимость и восстанавливает кучу.
func (q *openQueue[P]) update(n *node[P], prev *node[P], cost, priority float64) {
	n.prev = prev
	n.cost = cost
	n.priority = priority
	heap.Fix(q, n.index)
}
