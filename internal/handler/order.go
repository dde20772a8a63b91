package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/dunelark/storefront/internal/domain"
)

// OrderHandler serves checkout and order management endpoints.
type OrderHandler struct {
	orders domain.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders domain.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type createOrderRequest struct {
	ShippingAddressID string `json:"shipping_address_id" validate:"required,uuid"`
	BillingAddressID  string `json:"billing_address_id" validate:"omitempty,uuid"`
	PaymentMethod     string `json:"payment_method" validate:"required"`
	CouponCode        string `json:"coupon_code"`
	CustomerEmail     string `json:"customer_email" validate:"required,email"`
	CustomerNotes     string `json:"customer_notes" validate:"max=1000"`
}

type orderItemResponse struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	ImageURL       string `json:"image_url,omitempty"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int32  `json:"unit_price_cents"`
	TotalCents     int32  `json:"total_cents"`
}

type orderResponse struct {
	ID                 string              `json:"id"`
	OrderNumber        string              `json:"order_number"`
	Status             string              `json:"status"`
	PaymentStatus      string              `json:"payment_status"`
	PaymentMethod      string              `json:"payment_method"`
	SubtotalCents      int32               `json:"subtotal_cents"`
	ShippingCents      int32               `json:"shipping_cents"`
	DiscountCents      int32               `json:"discount_cents"`
	TotalCents         int32               `json:"total_cents"`
	CouponCode         string              `json:"coupon_code,omitempty"`
	CustomerNotes      string              `json:"customer_notes,omitempty"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	ShippedAt          *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt        *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	Items              []orderItemResponse `json:"items,omitempty"`
}

func toOrderResponse(order domain.Order, items []domain.OrderItem) orderResponse {
	resp := orderResponse{
		ID:            uuid.UUID(order.ID.Bytes).String(),
		OrderNumber:   order.OrderNumber,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		PaymentMethod: order.PaymentMethod,
		SubtotalCents: order.SubtotalCents,
		ShippingCents: order.ShippingCents,
		DiscountCents: order.DiscountCents,
		TotalCents:    order.TotalCents,
		CreatedAt:     order.CreatedAt.Time,
	}
	if order.CouponCode.Valid {
		resp.CouponCode = order.CouponCode.String
	}
	if order.CustomerNotes.Valid {
		resp.CustomerNotes = order.CustomerNotes.String
	}
	if order.CancellationReason.Valid {
		resp.CancellationReason = order.CancellationReason.String
	}
	if order.ShippedAt.Valid {
		t := order.ShippedAt.Time
		resp.ShippedAt = &t
	}
	if order.DeliveredAt.Valid {
		t := order.DeliveredAt.Time
		resp.DeliveredAt = &t
	}
	for _, item := range items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:             uuid.UUID(item.ID.Bytes).String(),
			ProductID:      uuid.UUID(item.ProductID.Bytes).String(),
			ProductName:    item.ProductName,
			ImageURL:       item.ImageURL,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		})
	}
	return resp
}

// Create handles POST /orders: checkout.
func (h *OrderHandler) Create(c echo.Context) error {
	identity, err := userIdentity(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, domain.Invalid("order.create", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	shippingID, _ := uuid.Parse(req.ShippingAddressID)
	params := domain.CreateOrderParams{
		ShippingAddressID: pgtype.UUID{Bytes: shippingID, Valid: true},
		PaymentMethod:     req.PaymentMethod,
		CouponCode:        req.CouponCode,
		CustomerEmail:     req.CustomerEmail,
		CustomerNotes:     req.CustomerNotes,
	}
	if req.BillingAddressID != "" {
		billingID, _ := uuid.Parse(req.BillingAddressID)
		params.BillingAddressID = pgtype.UUID{Bytes: billingID, Valid: true}
	}

	detail, err := h.orders.CreateOrder(c.Request().Context(), identity, params)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, toOrderResponse(detail.Order, detail.Items))
}

// List handles GET /orders.
func (h *OrderHandler) List(c echo.Context) error {
	identity, err := userIdentity(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var limit, offset int32
	echo.QueryParamsBinder(c).Int32("limit", &limit).Int32("offset", &offset)

	orders, err := h.orders.ListOrdersForUser(c.Request().Context(), identity.UserID(), limit, offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	resp := make([]orderResponse, len(orders))
	for i, order := range orders {
		resp[i] = toOrderResponse(order, nil)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"orders": resp})
}

// Get handles GET /orders/:orderID.
func (h *OrderHandler) Get(c echo.Context) error {
	identity, err := userIdentity(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	orderID, err := parseUUIDParam(c, "orderID")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	detail, err := h.orders.GetOrder(c.Request().Context(), orderID, identity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(detail.Order, detail.Items))
}

type cancelOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// Cancel handles POST /orders/:orderID/cancel.
func (h *OrderHandler) Cancel(c echo.Context) error {
	identity, err := userIdentity(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	orderID, err := parseUUIDParam(c, "orderID")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req cancelOrderRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, domain.Invalid("order.cancel", "malformed request body"))
	}

	detail, err := h.orders.CancelOrder(c.Request().Context(), orderID, identity, req.Reason)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(detail.Order, detail.Items))
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=shipped delivered cancelled"`
	Reason string `json:"reason" validate:"max=500"`
}

// UpdateStatus handles PATCH /orders/:orderID/status. This is the fulfillment
// operator's endpoint, not the customer's; the auth layer in front restricts
// it.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	orderID, err := parseUUIDParam(c, "orderID")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, domain.Invalid("order.update_status", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	detail, err := h.orders.UpdateStatus(c.Request().Context(), orderID,
		domain.OrderStatus(req.Status), req.Reason)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(detail.Order, detail.Items))
}

// HasPurchased handles GET /users/:userID/purchases/:productID. The review
// service calls it to gate verified-purchase reviews; like UpdateStatus it
// sits behind the operator auth layer.
func (h *OrderHandler) HasPurchased(c echo.Context) error {
	userID, err := parseUUIDParam(c, "userID")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	productID, err := parseUUIDParam(c, "productID")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	purchased, err := h.orders.HasUserPurchasedProduct(c.Request().Context(), userID, productID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"purchased": purchased})
}
