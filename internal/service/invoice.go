package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dunelark/storefront/internal/domain"
	"github.com/dunelark/storefront/internal/jobs"
	"github.com/dunelark/storefront/internal/repository"
	"github.com/dunelark/storefront/internal/telemetry"
)

type invoiceService struct {
	store   repository.Store
	metrics *telemetry.BusinessMetrics
}

// NewInvoiceService creates a new InvoiceService instance.
func NewInvoiceService(store repository.Store, metrics *telemetry.BusinessMetrics) domain.InvoiceService {
	return &invoiceService{store: store, metrics: metrics}
}

// Compile-time check that invoiceService implements domain.InvoiceService.
var _ domain.InvoiceService = (*invoiceService)(nil)

// DeriveInvoice creates the invoice for a committed order. At most one invoice
// ever exists per order; a repeat call fails with AlreadyExists and leaves the
// first invoice untouched.
func (s *invoiceService) DeriveInvoice(ctx context.Context, orderID pgtype.UUID) (*domain.Invoice, error) {
	const op = "invoice.derive"

	var row repository.Invoice
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		order, err := q.GetOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrOrderNotFound
			}
			return domain.Internal(err, op, "failed to load order")
		}

		row, err = deriveInvoice(ctx, q, order)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.InvoicesIssued.Inc()
	}
	return invoiceFromRow(row), nil
}

// deriveInvoice writes the invoice row for an order through q, which may be
// bound to the order-creation transaction. The existing-invoice check plus
// the unique index on order_id make derivation at-most-once even under
// concurrent calls.
func deriveInvoice(ctx context.Context, q repository.Querier, order repository.Order) (repository.Invoice, error) {
	const op = "invoice.derive"

	_, err := q.GetInvoiceByOrderID(ctx, order.ID)
	if err == nil {
		return repository.Invoice{}, domain.ErrInvoiceAlreadyExists
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return repository.Invoice{}, domain.Internal(err, op, "failed to check for existing invoice")
	}

	number, err := newInvoiceNumber()
	if err != nil {
		return repository.Invoice{}, domain.Internal(err, op, "failed to generate invoice number")
	}

	inv, err := q.CreateInvoice(ctx, repository.CreateInvoiceParams{
		OrderID:       order.ID,
		InvoiceNumber: number,
		SubtotalCents: order.SubtotalCents,
		ShippingCents: order.ShippingCents,
		DiscountCents: order.DiscountCents,
		TotalCents:    order.TotalCents,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return repository.Invoice{}, domain.ErrInvoiceAlreadyExists
		}
		return repository.Invoice{}, domain.Internal(err, op, "failed to create invoice")
	}

	if err := jobs.Enqueue(ctx, q, jobs.JobTypeInvoiceIssued, jobs.InvoiceIssuedPayload{
		OrderID:       uuid.UUID(order.ID.Bytes),
		Email:         order.CustomerEmail,
		OrderNumber:   order.OrderNumber,
		InvoiceNumber: inv.InvoiceNumber,
		TotalCents:    inv.TotalCents,
		IssuedAt:      inv.IssuedAt.Time,
	}); err != nil {
		return repository.Invoice{}, domain.Internal(err, op, "failed to enqueue invoice email")
	}

	return inv, nil
}

// GetInvoice retrieves an invoice by ID.
func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID pgtype.UUID) (*domain.Invoice, error) {
	const op = "invoice.get"

	row, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, domain.Internal(err, op, "failed to load invoice")
	}
	return invoiceFromRow(row), nil
}

// GetInvoiceForOrder retrieves the invoice derived from an order.
func (s *invoiceService) GetInvoiceForOrder(ctx context.Context, orderID pgtype.UUID) (*domain.Invoice, error) {
	const op = "invoice.get_for_order"

	row, err := s.store.GetInvoiceByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, domain.Internal(err, op, "failed to load invoice")
	}
	return invoiceFromRow(row), nil
}

func invoiceFromRow(row repository.Invoice) *domain.Invoice {
	return &domain.Invoice{
		ID:            row.ID,
		OrderID:       row.OrderID,
		InvoiceNumber: row.InvoiceNumber,
		SubtotalCents: row.SubtotalCents,
		ShippingCents: row.ShippingCents,
		DiscountCents: row.DiscountCents,
		TotalCents:    row.TotalCents,
		IssuedAt:      row.IssuedAt,
		CreatedAt:     row.CreatedAt,
	}
}
