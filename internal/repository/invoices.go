package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const invoiceColumns = `id, order_id, invoice_number, subtotal_cents, shipping_cents,
       discount_cents, total_cents, issued_at, created_at`

const createInvoice = `
INSERT INTO invoices (order_id, invoice_number, subtotal_cents, shipping_cents, discount_cents, total_cents, issued_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
RETURNING ` + invoiceColumns

type CreateInvoiceParams struct {
	OrderID       pgtype.UUID
	InvoiceNumber string
	SubtotalCents int32
	ShippingCents int32
	DiscountCents int32
	TotalCents    int32
}

func (q *Queries) CreateInvoice(ctx context.Context, arg CreateInvoiceParams) (Invoice, error) {
	row := q.db.QueryRow(ctx, createInvoice,
		arg.OrderID,
		arg.InvoiceNumber,
		arg.SubtotalCents,
		arg.ShippingCents,
		arg.DiscountCents,
		arg.TotalCents,
	)
	return scanInvoice(row)
}

const getInvoice = `
SELECT ` + invoiceColumns + `
FROM invoices
WHERE id = $1
`

func (q *Queries) GetInvoice(ctx context.Context, id pgtype.UUID) (Invoice, error) {
	return scanInvoice(q.db.QueryRow(ctx, getInvoice, id))
}

const getInvoiceByOrderID = `
SELECT ` + invoiceColumns + `
FROM invoices
WHERE order_id = $1
`

func (q *Queries) GetInvoiceByOrderID(ctx context.Context, orderID pgtype.UUID) (Invoice, error) {
	return scanInvoice(q.db.QueryRow(ctx, getInvoiceByOrderID, orderID))
}

type invoiceRow interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row invoiceRow) (Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID,
		&inv.OrderID,
		&inv.InvoiceNumber,
		&inv.SubtotalCents,
		&inv.ShippingCents,
		&inv.DiscountCents,
		&inv.TotalCents,
		&inv.IssuedAt,
		&inv.CreatedAt,
	)
	return inv, err
}
