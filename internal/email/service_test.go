package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOrderConfirmation(t *testing.T) {
	sender := &MockSender{}
	svc := NewService(sender, "orders@example.com", "Dunelark")

	err := svc.SendOrderConfirmation(context.Background(), OrderConfirmationEmail{
		Email:         "casey@example.com",
		OrderNumber:   "ORD-20250615-ABCDEF",
		OrderDate:     time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
		SubtotalCents: 2500,
		ShippingCents: 1000,
		DiscountCents: 500,
		TotalCents:    3000,
	})
	require.NoError(t, err)

	require.Len(t, sender.Sent, 1)
	msg := sender.Sent[0]
	assert.Equal(t, []string{"casey@example.com"}, msg.To)
	assert.Equal(t, "Dunelark <orders@example.com>", msg.From)
	assert.Equal(t, "Order Confirmation - ORD-20250615-ABCDEF", msg.Subject)
	assert.Contains(t, msg.TextBody, "June 15, 2025")
	assert.Contains(t, msg.TextBody, "Subtotal:  $25.00")
	assert.Contains(t, msg.TextBody, "Discount: -$5.00")
	assert.Contains(t, msg.TextBody, "Total:     $30.00")
}

func TestSendOrderConfirmation_OmitsZeroDiscount(t *testing.T) {
	sender := &MockSender{}
	svc := NewService(sender, "orders@example.com", "Dunelark")

	err := svc.SendOrderConfirmation(context.Background(), OrderConfirmationEmail{
		Email:         "casey@example.com",
		OrderNumber:   "ORD-20250615-ABCDEF",
		OrderDate:     time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
		SubtotalCents: 2500,
		ShippingCents: 1000,
		TotalCents:    3500,
	})
	require.NoError(t, err)
	assert.NotContains(t, sender.Sent[0].TextBody, "Discount")
}

func TestSendOrderStatusUpdate(t *testing.T) {
	sender := &MockSender{}
	svc := NewService(sender, "orders@example.com", "Dunelark")

	err := svc.SendOrderStatusUpdate(context.Background(), OrderStatusUpdateEmail{
		Email:       "casey@example.com",
		OrderNumber: "ORD-20250615-ABCDEF",
		NewStatus:   "cancelled",
		Reason:      "Cancelled by customer",
	})
	require.NoError(t, err)

	msg := sender.Sent[0]
	assert.Equal(t, "Order Update - ORD-20250615-ABCDEF", msg.Subject)
	assert.Contains(t, msg.TextBody, "is now cancelled")
	assert.Contains(t, msg.TextBody, "Reason: Cancelled by customer")
}

func TestSendInvoice(t *testing.T) {
	sender := &MockSender{}
	svc := NewService(sender, "orders@example.com", "Dunelark")

	err := svc.SendInvoice(context.Background(), InvoiceEmail{
		Email:         "casey@example.com",
		OrderNumber:   "ORD-20250615-ABCDEF",
		InvoiceNumber: "INV-20250615-Q7XR2M",
		TotalCents:    3000,
		IssuedAt:      time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	msg := sender.Sent[0]
	assert.Equal(t, "Invoice INV-20250615-Q7XR2M - ORD-20250615-ABCDEF", msg.Subject)
	assert.Contains(t, msg.TextBody, "INV-20250615-Q7XR2M")
	assert.Contains(t, msg.TextBody, "$30.00")
}

func TestSendFailurePropagates(t *testing.T) {
	sender := &MockSender{
		SendFunc: func(_ context.Context, _ *Email) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	svc := NewService(sender, "orders@example.com", "Dunelark")

	err := svc.SendOrderStatusUpdate(context.Background(), OrderStatusUpdateEmail{
		Email:       "casey@example.com",
		OrderNumber: "ORD-20250615-ABCDEF",
		NewStatus:   "shipped",
	})
	assert.Error(t, err)
}
