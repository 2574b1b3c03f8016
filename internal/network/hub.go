package network

import (
	"sync"

	"geballer-core/pkg/api"
)

// Broadcaster занимается только рассылкой обновлений подписчикам.
// Подписка идёт на конкретного агента; медленный подписчик теряет
// сообщения, а не тормозит мир.
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: AgentID -> подписчики
	subscribers map[string]map[chan api.TickUpdate]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]map[chan api.TickUpdate]struct{}),
	}
}

// Register создает личный канал для наблюдателя за агентом agentID.
func (b *Broadcaster) Register(agentID string) chan api.TickUpdate {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan api.TickUpdate, 100)
	if b.subscribers[agentID] == nil {
		b.subscribers[agentID] = make(map[chan api.TickUpdate]struct{})
	}
	b.subscribers[agentID][ch] = struct{}{}
	return ch
}

// Unregister удаляет подписчика и закрывает его канал.
func (b *Broadcaster) Unregister(agentID string, ch chan api.TickUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[agentID]
	if _, ok := subs[ch]; !ok {
		return
	}
	close(ch)
	delete(subs, ch)
	if len(subs) == 0 {
		delete(b.subscribers, agentID)
	}
}

// SendTo отправляет обновление всем наблюдателям агента (без блокировки).
func (b *Broadcaster) SendTo(agentID string, msg api.TickUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[agentID] {
		select {
		case ch <- msg:
		default:
			// канал переполнен, пропускаем
		}
	}
}

// HasSubscriber проверяет, смотрит ли кто-нибудь за агентом.
// Используется, чтобы не собирать DTO впустую.
func (b *Broadcaster) HasSubscriber(agentID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[agentID]) > 0
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, subs := range b.subscribers {
		n += len(subs)
	}
	return n
}
