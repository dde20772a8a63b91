// Package events publishes order lifecycle events for downstream consumers
// (analytics, fulfillment dashboards). Publishing happens after commit and is
// fire-and-forget: a broker outage is logged, never surfaced to the shopper.
package events

import (
	"context"
	"time"
)

// Subjects for order lifecycle events.
const (
	SubjectOrderCreated       = "orders.created"
	SubjectOrderStatusChanged = "orders.status_changed"
)

// OrderCreated is emitted once per committed order.
type OrderCreated struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	TotalCents  int32     `json:"total_cents"`
	ItemCount   int       `json:"item_count"`
	CouponCode  string    `json:"coupon_code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderStatusChanged is emitted on every status machine transition.
type OrderStatusChanged struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	Reason      string    `json:"reason,omitempty"`
	ChangedAt   time.Time `json:"changed_at"`
}

// Publisher emits order lifecycle events.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreated) error
	PublishOrderStatusChanged(ctx context.Context, event OrderStatusChanged) error
	Close()
}

// NoopPublisher drops all events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, OrderCreated) error {
	return nil
}

func (NoopPublisher) PublishOrderStatusChanged(context.Context, OrderStatusChanged) error {
	return nil
}

func (NoopPublisher) Close() {}
