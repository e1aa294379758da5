package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrBusFull = errors.New("event bus is full")

// MemoryBus is an in-process Publisher and Consumer backed by a buffered channel.
type MemoryBus struct {
	ch        chan OrderEvent
	closeOnce sync.Once
	done      chan struct{}
}

func NewMemoryBus(buffer int) *MemoryBus {
	return &MemoryBus{
		ch:   make(chan OrderEvent, buffer),
		done: make(chan struct{}),
	}
}

// Publish enqueues without blocking; a full buffer drops the event.
func (b *MemoryBus) Publish(_ context.Context, event OrderEvent) error {
	select {
	case <-b.done:
		return errors.New("event bus is closed")
	default:
	}
	select {
	case b.ch <- event:
		return nil
	default:
		return ErrBusFull
	}
}

func (b *MemoryBus) Run(ctx context.Context, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			return nil
		case event := <-b.ch:
			if err := h(ctx, event); err != nil {
				slog.ErrorContext(ctx, "order event handler failed", "type", event.Type, "orderId", event.OrderID, "error", err)
			}
		}
	}
}

func (b *MemoryBus) Close() error {
	b.closeOnce.Do(func() { close(b.done) })
	return nil
}
