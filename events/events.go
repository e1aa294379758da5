// Package events carries order lifecycle events from the checkout flow to
// background consumers. Publishing is best effort: a failed publish is
// logged by the caller and never fails the originating request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	OrderPlaced        EventType = "order.placed"
	OrderPaid          EventType = "order.paid"
	OrderStatusUpdated EventType = "order.status_updated"
)

// OrderEvent is the JSON payload published for every order change.
type OrderEvent struct {
	Type          EventType `json:"type"`
	OrderID       string    `json:"orderId"`
	UserID        string    `json:"userId"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// Handler processes one event. A returned error drops the message.
type Handler func(ctx context.Context, event OrderEvent) error

type Consumer interface {
	// Run blocks delivering events to h until ctx is cancelled.
	Run(ctx context.Context, h Handler) error
	Close() error
}

func encode(event OrderEvent) ([]byte, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return body, nil
}

func decode(body []byte) (OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return OrderEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }
