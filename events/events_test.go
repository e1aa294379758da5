package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	body, err := encode(OrderEvent{Type: OrderPlaced, OrderID: "o1", Amount: 110})
	require.NoError(t, err)

	event, err := decode(body)
	require.NoError(t, err)
	assert.Equal(t, OrderPlaced, event.Type)
	assert.Equal(t, "o1", event.OrderID)
	assert.False(t, event.OccurredAt.IsZero())

	_, err = decode([]byte("{"))
	assert.Error(t, err)
}

func TestMemoryBus(t *testing.T) {
	bus := NewMemoryBus(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Publish(ctx, OrderEvent{Type: OrderPaid, OrderID: "o1"}))
	assert.ErrorIs(t, bus.Publish(ctx, OrderEvent{OrderID: "o2"}), ErrBusFull)

	got := make(chan OrderEvent, 2)
	done := make(chan error, 1)
	go func() {
		done <- bus.Run(ctx, func(_ context.Context, e OrderEvent) error {
			got <- e
			return errors.New("handler errors are logged")
		})
	}()

	select {
	case e := <-got:
		assert.Equal(t, "o1", e.OrderID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	require.NoError(t, bus.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
	assert.Error(t, bus.Publish(ctx, OrderEvent{}))
}

func TestHandleDelivery(t *testing.T) {
	var seen OrderEvent
	err := handleDelivery(context.Background(), []byte(`{"type":"order.status_updated","orderId":"o9","status":"Shipped"}`),
		func(_ context.Context, e OrderEvent) error { seen = e; return nil })
	require.NoError(t, err)
	assert.Equal(t, OrderStatusUpdated, seen.Type)
	assert.Equal(t, "Shipped", seen.Status)

	assert.Error(t, handleDelivery(context.Background(), []byte("nope"), func(context.Context, OrderEvent) error { return nil }))
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleep(ctx, time.Minute))
	assert.True(t, sleep(context.Background(), time.Millisecond))
}
