package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventRecommendationSaved    = "recommendation_saved"
	EventRecommendationExecuted = "recommendation_executed"
	EventBalanceUpdated         = "balance_updated"
	EventCardPaymentDue         = "card_payment_due"
)

const subscriberBuffer = 10

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub рассылает события всем открытым SSE-подпискам. Приложение однопользовательское,
// поэтому подписки различаются только собственным идентификатором.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]chan Event
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]chan Event),
	}
}

// Subscribe открывает подписку и возвращает канал и функцию отписки.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	id := uuid.New()
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			delete(h.subscribers, id)
			close(ch)
		})
	}
}

// Publish отправляет событие всем подписчикам. Медленный подписчик событие теряет.
func (h *Hub) Publish(event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers возвращает число открытых подписок.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers)
}
