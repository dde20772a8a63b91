package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dunelark/storefront/internal/domain"
	"github.com/dunelark/storefront/internal/events"
	"github.com/dunelark/storefront/internal/jobs"
	"github.com/dunelark/storefront/internal/repository"
	"github.com/dunelark/storefront/internal/shipping"
	"github.com/dunelark/storefront/internal/telemetry"
)

type orderService struct {
	store     repository.Store
	shipping  shipping.Quoter
	coupons   domain.CouponService
	publisher events.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
}

// NewOrderService creates a new OrderService instance.
func NewOrderService(
	store repository.Store,
	quoter shipping.Quoter,
	coupons domain.CouponService,
	publisher events.Publisher,
	metrics *telemetry.BusinessMetrics,
	logger *slog.Logger,
) domain.OrderService {
	return &orderService{
		store:     store,
		shipping:  quoter,
		coupons:   coupons,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Compile-time check that orderService implements domain.OrderService.
var _ domain.OrderService = (*orderService)(nil)

// CreateOrder converts the caller's cart into a durable order.
//
// Everything that mutates state runs in one transaction: the order row and its
// frozen line snapshots, the conditional stock decrements, the cart clear,
// coupon consumption, invoice derivation and the confirmation-email outbox
// row. A failure at any step rolls the whole thing back; stock, cart and
// coupon usage are left exactly as they were.
//
// Stock is re-checked per line against the live catalog, but the authoritative
// guard is the conditional decrement: zero rows affected means a concurrent
// checkout took the stock first, and the order fails rather than oversell.
func (s *orderService) CreateOrder(ctx context.Context, identity domain.Identity, params domain.CreateOrderParams) (*domain.OrderDetail, error) {
	const op = "order.create"

	if !identity.IsUser() || !identity.Valid() {
		return nil, domain.ErrGuestCheckout
	}
	userID := identity.UserID()

	if params.CustomerEmail == "" {
		return nil, domain.Invalid(op, "customer email is required")
	}
	if params.PaymentMethod == "" {
		return nil, domain.Invalid(op, "payment method is required")
	}
	if !params.ShippingAddressID.Valid {
		return nil, domain.Invalid(op, "shipping address is required")
	}

	var (
		order      repository.Order
		orderItems []repository.OrderItem
		couponUsed bool
	)

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, err := q.GetCartByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrEmptyCart
			}
			return domain.Internal(err, op, "failed to load cart")
		}

		lines, err := q.GetCartItems(ctx, cart.ID)
		if err != nil {
			return domain.Internal(err, op, "failed to load cart items")
		}
		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		if err := s.authorizeAddress(ctx, q, params.ShippingAddressID, userID, op); err != nil {
			return err
		}
		billingAddressID := params.BillingAddressID
		if !billingAddressID.Valid {
			billingAddressID = params.ShippingAddressID
		} else if err := s.authorizeAddress(ctx, q, billingAddressID, userID, op); err != nil {
			return err
		}

		var subtotal int32
		for _, line := range lines {
			if line.Quantity > line.StockQuantity {
				return insufficientStock(op, line.ProductName)
			}
			subtotal += line.Quantity * line.UnitPriceCents
		}

		shippingCents := s.shipping.Quote(subtotal)

		var (
			discount   int32
			couponID   pgtype.UUID
			couponCode pgtype.Text
		)
		if params.CouponCode != "" {
			validation, err := s.coupons.ValidateForUser(ctx, userID, params.CouponCode, subtotal)
			if err != nil {
				return err
			}
			discount = validation.DiscountCents
			couponID = validation.Coupon.ID
			couponCode = pgtype.Text{String: validation.Coupon.Code, Valid: true}
			couponUsed = true
		}

		total := subtotal + shippingCents - discount

		orderNumber, err := newOrderNumber()
		if err != nil {
			return domain.Internal(err, op, "failed to generate order number")
		}

		order, err = q.CreateOrder(ctx, repository.CreateOrderParams{
			OrderNumber:       orderNumber,
			UserID:            userID,
			CustomerEmail:     params.CustomerEmail,
			Status:            string(domain.OrderStatusProcessing),
			PaymentStatus:     string(domain.PaymentStatusPending),
			PaymentMethod:     params.PaymentMethod,
			SubtotalCents:     subtotal,
			ShippingCents:     shippingCents,
			DiscountCents:     discount,
			TotalCents:        total,
			CouponID:          couponID,
			CouponCode:        couponCode,
			ShippingAddressID: params.ShippingAddressID,
			BillingAddressID:  billingAddressID,
			CustomerNotes:     pgtype.Text{String: params.CustomerNotes, Valid: params.CustomerNotes != ""},
		})
		if err != nil {
			return domain.Internal(err, op, "failed to create order")
		}

		orderItems = make([]repository.OrderItem, 0, len(lines))
		for _, line := range lines {
			item, err := q.CreateOrderItem(ctx, repository.CreateOrderItemParams{
				OrderID:        order.ID,
				ProductID:      line.ProductID,
				ProductName:    line.ProductName,
				ImageUrl:       line.ImageUrl,
				Quantity:       line.Quantity,
				UnitPriceCents: line.UnitPriceCents,
				TotalCents:     line.Quantity * line.UnitPriceCents,
			})
			if err != nil {
				return domain.Internal(err, op, "failed to create order item")
			}
			orderItems = append(orderItems, item)

			affected, err := q.DecrementProductStock(ctx, repository.DecrementProductStockParams{
				ID:       line.ProductID,
				Quantity: line.Quantity,
			})
			if err != nil {
				return domain.Internal(err, op, "failed to decrement stock")
			}
			if affected == 0 {
				return insufficientStock(op, line.ProductName)
			}
		}

		if err := q.ClearCart(ctx, cart.ID); err != nil {
			return domain.Internal(err, op, "failed to clear cart")
		}

		if couponUsed {
			if err := markCouponUsed(ctx, q, userID, couponID, order.ID); err != nil {
				return err
			}
		}

		if _, err := deriveInvoice(ctx, q, order); err != nil {
			return err
		}

		return jobs.Enqueue(ctx, q, jobs.JobTypeOrderConfirmation, jobs.OrderConfirmationPayload{
			OrderID:       uuid.UUID(order.ID.Bytes),
			Email:         order.CustomerEmail,
			OrderNumber:   order.OrderNumber,
			OrderDate:     order.CreatedAt.Time,
			SubtotalCents: order.SubtotalCents,
			ShippingCents: order.ShippingCents,
			DiscountCents: order.DiscountCents,
			TotalCents:    order.TotalCents,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
		s.metrics.OrderValue.Observe(float64(order.TotalCents))
		s.metrics.OrderItemCount.Observe(float64(len(orderItems)))
		if couponUsed {
			s.metrics.CouponsRedeemed.Inc()
		}
	}
	s.publishCreated(ctx, order, len(orderItems))

	return orderDetail(order, orderItems), nil
}

// CancelOrder cancels a customer's own Processing order.
func (s *orderService) CancelOrder(ctx context.Context, orderID pgtype.UUID, identity domain.Identity, reason string) (*domain.OrderDetail, error) {
	const op = "order.cancel"

	if !identity.IsUser() {
		return nil, domain.ErrOrderNotFound
	}
	if reason == "" {
		reason = "Cancelled by customer"
	}

	var (
		order     repository.Order
		items     []repository.OrderItem
		oldStatus string
	)
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		var err error
		order, err = q.GetOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrOrderNotFound
			}
			return domain.Internal(err, op, "failed to load order")
		}
		if order.UserID != identity.UserID() {
			return domain.Forbidden(op, "order belongs to another customer")
		}
		oldStatus = order.Status

		order, items, err = cancelOrderTx(ctx, q, order, reason, op)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCancelled.Inc()
	}
	s.publishStatusChanged(ctx, order, oldStatus, reason)

	return orderDetail(order, items), nil
}

// UpdateStatus applies a status machine transition with its side effects.
// Shipped stamps shipped_at; Delivered stamps delivered_at and marks payment
// Paid; Cancelled restores stock and records the reason.
func (s *orderService) UpdateStatus(ctx context.Context, orderID pgtype.UUID, status domain.OrderStatus, reason string) (*domain.OrderDetail, error) {
	const op = "order.update_status"

	var (
		order     repository.Order
		items     []repository.OrderItem
		oldStatus string
	)
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		var err error
		order, err = q.GetOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrOrderNotFound
			}
			return domain.Internal(err, op, "failed to load order")
		}
		oldStatus = order.Status

		if !domain.CanTransition(domain.OrderStatus(order.Status), status) {
			return invalidTransition(op, order.Status, string(status))
		}

		switch status {
		case domain.OrderStatusShipped:
			order, err = q.MarkOrderShipped(ctx, order.ID)
			if err != nil {
				return domain.Internal(err, op, "failed to mark order shipped")
			}
			items, err = q.GetOrderItems(ctx, order.ID)
			if err != nil {
				return domain.Internal(err, op, "failed to load order items")
			}
		case domain.OrderStatusDelivered:
			order, err = q.MarkOrderDelivered(ctx, order.ID)
			if err != nil {
				return domain.Internal(err, op, "failed to mark order delivered")
			}
			items, err = q.GetOrderItems(ctx, order.ID)
			if err != nil {
				return domain.Internal(err, op, "failed to load order items")
			}
		case domain.OrderStatusCancelled:
			if reason == "" {
				return domain.Invalid(op, "a cancellation reason is required")
			}
			order, items, err = cancelOrderTx(ctx, q, order, reason, op)
			if err != nil {
				return err
			}
		default:
			return invalidTransition(op, order.Status, string(status))
		}

		return jobs.Enqueue(ctx, q, jobs.JobTypeOrderStatusUpdate, jobs.OrderStatusUpdatePayload{
			OrderID:     uuid.UUID(order.ID.Bytes),
			Email:       order.CustomerEmail,
			OrderNumber: order.OrderNumber,
			NewStatus:   order.Status,
			Reason:      reason,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil && status == domain.OrderStatusCancelled {
		s.metrics.OrdersCancelled.Inc()
	}
	s.publishStatusChanged(ctx, order, oldStatus, reason)

	return orderDetail(order, items), nil
}

// GetOrder retrieves an order with its line items, enforcing ownership.
func (s *orderService) GetOrder(ctx context.Context, orderID pgtype.UUID, identity domain.Identity) (*domain.OrderDetail, error) {
	const op = "order.get"

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, op, "failed to load order")
	}
	if !identity.IsUser() || order.UserID != identity.UserID() {
		return nil, domain.ErrOrderNotFound
	}

	items, err := s.store.GetOrderItems(ctx, order.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load order items")
	}
	return orderDetail(order, items), nil
}

// ListOrdersForUser lists a customer's orders, newest first.
func (s *orderService) ListOrdersForUser(ctx context.Context, userID pgtype.UUID, limit, offset int32) ([]domain.Order, error) {
	const op = "order.list"

	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.store.ListOrdersForUser(ctx, repository.ListOrdersForUserParams{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list orders")
	}

	orders := make([]domain.Order, len(rows))
	for i, row := range rows {
		orders[i] = orderFromRow(row)
	}
	return orders, nil
}

// HasUserPurchasedProduct reports whether the user has a Delivered order
// containing the product.
func (s *orderService) HasUserPurchasedProduct(ctx context.Context, userID, productID pgtype.UUID) (bool, error) {
	const op = "order.has_purchased"

	purchased, err := s.store.UserHasDeliveredProduct(ctx, repository.UserHasDeliveredProductParams{
		UserID:    userID,
		ProductID: productID,
	})
	if err != nil {
		return false, domain.Internal(err, op, "failed to check purchase history")
	}
	return purchased, nil
}

// cancelOrderTx performs the shared cancellation side effects: status flip,
// refund bookkeeping and stock restoration for every ordered quantity.
func cancelOrderTx(ctx context.Context, q repository.Querier, order repository.Order, reason, op string) (repository.Order, []repository.OrderItem, error) {
	if order.Status != string(domain.OrderStatusProcessing) {
		return repository.Order{}, nil, invalidTransition(op, order.Status, string(domain.OrderStatusCancelled))
	}

	items, err := q.GetOrderItems(ctx, order.ID)
	if err != nil {
		return repository.Order{}, nil, domain.Internal(err, op, "failed to load order items")
	}
	for _, item := range items {
		if err := q.IncrementProductStock(ctx, repository.IncrementProductStockParams{
			ID:       item.ProductID,
			Quantity: item.Quantity,
		}); err != nil {
			return repository.Order{}, nil, domain.Internal(err, op, "failed to restore stock")
		}
	}

	cancelled, err := q.MarkOrderCancelled(ctx, repository.MarkOrderCancelledParams{
		ID:     order.ID,
		Reason: pgtype.Text{String: reason, Valid: true},
	})
	if err != nil {
		return repository.Order{}, nil, domain.Internal(err, op, "failed to cancel order")
	}
	return cancelled, items, nil
}

// authorizeAddress checks the address exists and belongs to the caller.
func (s *orderService) authorizeAddress(ctx context.Context, q repository.Querier, addressID, userID pgtype.UUID, op string) error {
	addr, err := q.GetAddress(ctx, addressID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAddressNotFound
		}
		return domain.Internal(err, op, "failed to load address")
	}
	if addr.UserID != userID {
		return domain.ErrAddressForbidden
	}
	return nil
}

func (s *orderService) publishCreated(ctx context.Context, order repository.Order, itemCount int) {
	event := events.OrderCreated{
		OrderID:     uuid.UUID(order.ID.Bytes).String(),
		OrderNumber: order.OrderNumber,
		UserID:      uuid.UUID(order.UserID.Bytes).String(),
		TotalCents:  order.TotalCents,
		ItemCount:   itemCount,
		CouponCode:  order.CouponCode.String,
		CreatedAt:   order.CreatedAt.Time,
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Warn("failed to publish order created event",
			"order_number", order.OrderNumber, "error", err)
	}
}

func (s *orderService) publishStatusChanged(ctx context.Context, order repository.Order, oldStatus, reason string) {
	event := events.OrderStatusChanged{
		OrderID:     uuid.UUID(order.ID.Bytes).String(),
		OrderNumber: order.OrderNumber,
		OldStatus:   oldStatus,
		NewStatus:   order.Status,
		Reason:      reason,
		ChangedAt:   order.UpdatedAt.Time,
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Warn("failed to publish order status event",
			"order_number", order.OrderNumber, "error", err)
	}
}

func orderDetail(order repository.Order, items []repository.OrderItem) *domain.OrderDetail {
	detail := &domain.OrderDetail{
		Order: orderFromRow(order),
		Items: make([]domain.OrderItem, len(items)),
	}
	for i, item := range items {
		detail.Items[i] = domain.OrderItem{
			ID:             item.ID,
			OrderID:        item.OrderID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			ImageURL:       item.ImageUrl.String,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		}
	}
	return detail
}

func orderFromRow(row repository.Order) domain.Order {
	return domain.Order{
		ID:                 row.ID,
		OrderNumber:        row.OrderNumber,
		UserID:             row.UserID,
		CustomerEmail:      row.CustomerEmail,
		Status:             domain.OrderStatus(row.Status),
		PaymentStatus:      domain.PaymentStatus(row.PaymentStatus),
		PaymentMethod:      row.PaymentMethod,
		SubtotalCents:      row.SubtotalCents,
		ShippingCents:      row.ShippingCents,
		DiscountCents:      row.DiscountCents,
		TotalCents:         row.TotalCents,
		CouponID:           row.CouponID,
		CouponCode:         row.CouponCode,
		ShippingAddressID:  row.ShippingAddressID,
		BillingAddressID:   row.BillingAddressID,
		CustomerNotes:      row.CustomerNotes,
		CancellationReason: row.CancellationReason,
		ShippedAt:          row.ShippedAt,
		DeliveredAt:        row.DeliveredAt,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}
