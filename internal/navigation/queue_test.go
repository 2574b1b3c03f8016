package navigation

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenQueue(t *testing.T) {
	q := make(openQueue[string], 0)
	heap.Init(&q)

	n1 := &node[string]{pos: "a", priority: 10}
	n2 := &node[string]{pos: "b", priority: 5}
	n3 := &node[string]{pos: "c", priority: 20}
	heap.Push(&q, n1)
	heap.Push(&q, n2)
	heap.Push(&q, n3)
	assert.Equal(t, 3, q.Len())

	first := heap.Pop(&q).(*node[string])
	assert.Equal(t, "b", first.pos)
	assert.Equal(t, -1, first.index)

	// Поднимаем a до 30: первым теперь должен выйти c.
	q.update(n1, first, 30, 30)
	assert.Same(t, first, n1.prev)

	assert.Equal(t, "c", heap.Pop(&q).(*node[string]).pos)
	assert.Equal(t, "a", heap.Pop(&q).(*node[string]).pos)
}
