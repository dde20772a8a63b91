package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Invoice-related domain errors.
var (
	ErrInvoiceNotFound      = &Error{Code: ENOTFOUND, Message: "Invoice not found"}
	ErrInvoiceAlreadyExists = &Error{Code: ECONFLICT, Message: "Invoice already exists for this order"}
)

// InvoiceService derives immutable financial snapshots from committed orders.
// An invoice is created at most once per order and never regenerated, only
// rendered.
type InvoiceService interface {
	// DeriveInvoice creates the invoice for an order: unique number, issue
	// date stamped now, totals copied from the order snapshot. A second call
	// for the same order fails and leaves the first invoice untouched.
	DeriveInvoice(ctx context.Context, orderID pgtype.UUID) (*Invoice, error)

	// GetInvoice retrieves an invoice by ID.
	GetInvoice(ctx context.Context, invoiceID pgtype.UUID) (*Invoice, error)

	// GetInvoiceForOrder retrieves the invoice derived from an order.
	GetInvoiceForOrder(ctx context.Context, orderID pgtype.UUID) (*Invoice, error)
}

// Invoice is the 1:1 financial record of an order.
type Invoice struct {
	ID            pgtype.UUID
	OrderID       pgtype.UUID
	InvoiceNumber string
	SubtotalCents int32
	ShippingCents int32
	DiscountCents int32
	TotalCents    int32
	IssuedAt      pgtype.Timestamptz
	CreatedAt     pgtype.Timestamptz
}

// Renderer turns an order and its invoice into a printable document. Rendering
// happens on demand, never at derivation time.
type Renderer interface {
	Render(ctx context.Context, order *OrderDetail, invoice *Invoice) ([]byte, error)
}
