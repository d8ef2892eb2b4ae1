package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()

	var confirmed []string
	bus.Subscribe(OrderConfirmed, func(e Event) error {
		confirmed = append(confirmed, e.OrderID)
		return nil
	})
	bus.Subscribe(OrderConfirmed, func(e Event) error {
		confirmed = append(confirmed, e.OrderID+"-second")
		return nil
	})

	bus.Publish(Event{Type: OrderConfirmed, OrderID: "ord-1"})
	bus.Publish(Event{Type: OrderSubmitted, OrderID: "ord-2"})

	assert.Equal(t, []string{"ord-1", "ord-1-second"}, confirmed)
}

func TestBusSetsCreatedAt(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(PollStopped, func(e Event) error {
		assert.False(t, e.CreatedAt.IsZero())
		return nil
	})
	bus.Publish(Event{Type: PollStopped, OrderID: "ord-1"})
}
