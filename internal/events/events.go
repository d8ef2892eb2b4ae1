// Package events provides in-process pub/sub for the booking flow. The
// orchestrator and poller publish; metrics, history, and notifiers subscribe.
package events

import (
	"sync"
	"time"
)

// Event types published by the booking core.
const (
	// OrderSubmitted fires after a selection has produced bookings and a
	// payable order.
	OrderSubmitted = "order.submitted"
	// OrderConfirmed fires when polling observes the terminal payment status.
	OrderConfirmed = "order.confirmed"
	// PollStopped fires when a poll loop halts on a transport error.
	PollStopped = "order.poll_stopped"
)

// Event is a lightweight domain event tied to one order. SubCourtID and
// SlotKeys are set on submission events so subscribers can persist the order
// without reaching back into the wizard.
type Event struct {
	Type       string
	OrderID    string
	SubCourtID int64
	SlotKeys   []string
	Amount     float64
	CreatedAt  time.Time
}

// Handler reacts to an event.
type Handler func(event Event) error

// Bus provides in-process pub/sub for order events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}
