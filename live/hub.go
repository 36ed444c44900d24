package live

import (
	"sync"
	"time"

	"github.com/yeremiapane/queueapp/utils"
)

// Message is what subscribers of a restaurant receive.
type Message struct {
	Event        string      `json:"event"`
	RestaurantID string      `json:"restaurant_id"`
	Data         interface{} `json:"data"`
	SentAt       time.Time   `json:"sent_at"`
}

// Hub fans restaurant events out to in-process subscribers, such as the
// websocket clients of an owner dashboard. Delivery is best effort.
type Hub struct {
	subscribers map[string]map[uint64]func(Message)
	nextID      uint64
	mutex       sync.Mutex
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[uint64]func(Message))}
}

// Subscribe registers onChange for one restaurant. The returned function
// removes it and is safe to call more than once.
func (h *Hub) Subscribe(restaurantID string, onChange func(Message)) (unsubscribe func()) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.nextID++
	id := h.nextID
	if h.subscribers[restaurantID] == nil {
		h.subscribers[restaurantID] = make(map[uint64]func(Message))
	}
	h.subscribers[restaurantID][id] = onChange

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mutex.Lock()
			defer h.mutex.Unlock()
			delete(h.subscribers[restaurantID], id)
			if len(h.subscribers[restaurantID]) == 0 {
				delete(h.subscribers, restaurantID)
			}
		})
	}
}

// SubscribeQueued is Subscribe with deliver running on its own goroutine
// behind a buffer of size messages. Messages that do not fit are dropped, so
// a slow subscriber never holds up Notify.
func (h *Hub) SubscribeQueued(restaurantID string, size int, deliver func(Message)) (unsubscribe func()) {
	queue := make(chan Message, size)
	stop := make(chan struct{})

	remove := h.Subscribe(restaurantID, func(msg Message) {
		select {
		case queue <- msg:
		default:
			utils.ErrorLogger.WithField("restaurant_id", restaurantID).Warnf("live subscriber is behind, dropping %s", msg.Event)
		}
	})

	go func() {
		for {
			select {
			case <-stop:
				return
			case msg := <-queue:
				deliver(msg)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			remove()
			close(stop)
		})
	}
}

// Notify delivers an event to the restaurant's current subscribers.
func (h *Hub) Notify(restaurantID, event string, data interface{}) {
	msg := Message{Event: event, RestaurantID: restaurantID, Data: data, SentAt: time.Now()}

	// callbacks run outside the lock so they may unsubscribe
	h.mutex.Lock()
	callbacks := make([]func(Message), 0, len(h.subscribers[restaurantID]))
	for _, fn := range h.subscribers[restaurantID] {
		callbacks = append(callbacks, fn)
	}
	h.mutex.Unlock()

	for _, fn := range callbacks {
		fn(msg)
	}
}

func (h *Hub) SubscriberCount(restaurantID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.subscribers[restaurantID])
}
