package ports

import (
	"context"
	"time"
)

// TopicOrderEvents carries order lifecycle events for downstream tracking.
const TopicOrderEvents = "checkout.order-events"

// OrderCreatedEvent announces one per-seller order minted during settlement.
type OrderCreatedEvent struct {
	EventType     string    `json:"eventType"`
	OrderID       string    `json:"orderId"`
	ShopID        string    `json:"shopId"`
	UserID        string    `json:"userId"`
	SessionID     string    `json:"sessionId"`
	SubtotalCents int64     `json:"subtotalCents"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// SessionSettledEvent announces a fully settled checkout session.
type SessionSettledEvent struct {
	EventType       string    `json:"eventType"`
	SessionID       string    `json:"sessionId"`
	UserID          string    `json:"userId"`
	GrandTotalCents int64     `json:"grandTotalCents"`
	OrderIDs        []string  `json:"orderIds"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// EventPublisher pushes one payload to the message bus. Delivery is
// at-least-once and unordered; callers treat failures as log-and-continue.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload any) error
}
