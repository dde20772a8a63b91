package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dunelark/storefront/internal/domain"
)

// InvoiceHandler serves invoice endpoints. Invoices are derived documents:
// they are created from committed orders and never edited.
type InvoiceHandler struct {
	invoices domain.InvoiceService
	orders   domain.OrderService
	logger   *slog.Logger
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(invoices domain.InvoiceService, orders domain.OrderService, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, orders: orders, logger: logger}
}

type invoiceResponse struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	InvoiceNumber string    `json:"invoice_number"`
	SubtotalCents int32     `json:"subtotal_cents"`
	ShippingCents int32     `json:"shipping_cents"`
	DiscountCents int32     `json:"discount_cents"`
	TotalCents    int32     `json:"total_cents"`
	IssuedAt      time.Time `json:"issued_at"`
}

func toInvoiceResponse(inv *domain.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:            uuid.UUID(inv.ID.Bytes).String(),
		OrderID:       uuid.UUID(inv.OrderID.Bytes).String(),
		InvoiceNumber: inv.InvoiceNumber,
		SubtotalCents: inv.SubtotalCents,
		ShippingCents: inv.ShippingCents,
		DiscountCents: inv.DiscountCents,
		TotalCents:    inv.TotalCents,
		IssuedAt:      inv.IssuedAt.Time,
	}
}

// GetForOrder handles GET /orders/:orderID/invoice. Ownership is enforced by
// loading the order first.
func (h *InvoiceHandler) GetForOrder(c echo.Context) error {
	identity, err := userIdentity(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	orderID, err := parseUUIDParam(c, "orderID")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if _, err := h.orders.GetOrder(c.Request().Context(), orderID, identity); err != nil {
		return respondError(c, h.logger, err)
	}

	inv, err := h.invoices.GetInvoiceForOrder(c.Request().Context(), orderID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// Derive handles POST /orders/:orderID/invoice. Orders normally get their
// invoice at checkout; this exists for backfilling orders whose derivation
// failed.
func (h *InvoiceHandler) Derive(c echo.Context) error {
	orderID, err := parseUUIDParam(c, "orderID")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	inv, err := h.invoices.DeriveInvoice(c.Request().Context(), orderID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, toInvoiceResponse(inv))
}
