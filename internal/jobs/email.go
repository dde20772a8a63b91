// Package jobs defines the email outbox job types and their payloads.
// Jobs are enqueued inside the transaction that produced them, so a
// notification can never outlive a rolled-back order, and delivery failures
// can never undo a committed one.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dunelark/storefront/internal/repository"
)

// Job type constants for email jobs.
const (
	JobTypeOrderConfirmation = "email:order_confirmation"
	JobTypeOrderStatusUpdate = "email:order_status_update"
	JobTypeInvoiceIssued     = "email:invoice_issued"
)

// OrderConfirmationPayload is the payload for an order confirmation email job.
type OrderConfirmationPayload struct {
	OrderID       uuid.UUID `json:"order_id"`
	Email         string    `json:"email"`
	OrderNumber   string    `json:"order_number"`
	OrderDate     time.Time `json:"order_date"`
	SubtotalCents int32     `json:"subtotal_cents"`
	ShippingCents int32     `json:"shipping_cents"`
	DiscountCents int32     `json:"discount_cents"`
	TotalCents    int32     `json:"total_cents"`
}

// OrderStatusUpdatePayload is the payload for a status change email job.
type OrderStatusUpdatePayload struct {
	OrderID     uuid.UUID `json:"order_id"`
	Email       string    `json:"email"`
	OrderNumber string    `json:"order_number"`
	NewStatus   string    `json:"new_status"`
	Reason      string    `json:"reason,omitempty"`
}

// InvoiceIssuedPayload is the payload for an invoice email job.
type InvoiceIssuedPayload struct {
	OrderID       uuid.UUID `json:"order_id"`
	Email         string    `json:"email"`
	OrderNumber   string    `json:"order_number"`
	InvoiceNumber string    `json:"invoice_number"`
	TotalCents    int32     `json:"total_cents"`
	IssuedAt      time.Time `json:"issued_at"`
}

// Enqueue serializes a payload and writes it to the outbox through the given
// queries, which may be bound to an open transaction.
func Enqueue(ctx context.Context, q repository.Querier, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", jobType, err)
	}
	if _, err := q.EnqueueEmailJob(ctx, repository.EnqueueEmailJobParams{
		JobType: jobType,
		Payload: data,
	}); err != nil {
		return fmt.Errorf("failed to enqueue %s job: %w", jobType, err)
	}
	return nil
}
