package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Order-related domain errors.
var (
	ErrOrderNotFound     = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrEmptyCart         = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrAddressNotFound   = &Error{Code: ENOTFOUND, Message: "Address not found"}
	ErrAddressForbidden  = &Error{Code: EFORBIDDEN, Message: "Address belongs to another customer"}
	ErrInvalidTransition = &Error{Code: ECONFLICT, Message: "Illegal order status transition"}
	ErrGuestCheckout     = &Error{Code: EUNAUTHORIZED, Message: "Sign in to place an order"}
)

// Order statuses.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Payment statuses recorded on an order. No gateway is involved; these are
// bookkeeping fields flipped by the status machine.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// validNext is the order status transition table. Shipped cannot return to
// Processing, Delivered and Cancelled are terminal, and Cancelled is reachable
// only from Processing.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusProcessing: {OrderStatusShipped: true, OrderStatusCancelled: true},
	OrderStatusShipped:    {OrderStatusDelivered: true},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// OrderService is the fulfillment orchestrator: it turns carts into durable
// orders and drives the order status machine.
type OrderService interface {
	// CreateOrder converts the identity's cart into an order. Stock decrement,
	// cart clearing and coupon consumption commit atomically with the order;
	// any failure leaves all three untouched.
	CreateOrder(ctx context.Context, identity Identity, params CreateOrderParams) (*OrderDetail, error)

	// CancelOrder cancels a Processing order, restoring every ordered quantity
	// back to stock and marking the payment refunded.
	CancelOrder(ctx context.Context, orderID pgtype.UUID, identity Identity, reason string) (*OrderDetail, error)

	// UpdateStatus applies a status-machine transition with its side effects
	// (timestamps, payment status, stock restoration on cancel).
	UpdateStatus(ctx context.Context, orderID pgtype.UUID, status OrderStatus, reason string) (*OrderDetail, error)

	// GetOrder retrieves a single order with its frozen line items, checking
	// that it belongs to the caller.
	GetOrder(ctx context.Context, orderID pgtype.UUID, identity Identity) (*OrderDetail, error)

	// ListOrdersForUser lists a customer's orders, newest first.
	ListOrdersForUser(ctx context.Context, userID pgtype.UUID, limit, offset int32) ([]Order, error)

	// HasUserPurchasedProduct reports whether the user has a Delivered order
	// containing the product. Used as the review authorization gate.
	HasUserPurchasedProduct(ctx context.Context, userID, productID pgtype.UUID) (bool, error)
}

// CreateOrderParams contains the checkout inputs beyond the cart itself.
type CreateOrderParams struct {
	ShippingAddressID pgtype.UUID
	BillingAddressID  pgtype.UUID // zero value = same as shipping
	PaymentMethod     string
	CouponCode        string
	CustomerEmail     string
	CustomerNotes     string
}

// Order is the durable order record. Everything except status, payment status,
// timestamps and notes is immutable once created.
type Order struct {
	ID                 pgtype.UUID
	OrderNumber        string
	UserID             pgtype.UUID
	CustomerEmail      string
	Status             OrderStatus
	PaymentStatus      PaymentStatus
	PaymentMethod      string
	SubtotalCents      int32
	ShippingCents      int32
	DiscountCents      int32
	TotalCents         int32
	CouponID           pgtype.UUID
	CouponCode         pgtype.Text
	ShippingAddressID  pgtype.UUID
	BillingAddressID   pgtype.UUID
	CustomerNotes      pgtype.Text
	CancellationReason pgtype.Text
	ShippedAt          pgtype.Timestamptz
	DeliveredAt        pgtype.Timestamptz
	CreatedAt          pgtype.Timestamptz
	UpdatedAt          pgtype.Timestamptz
}

// OrderItem is a line frozen at order time: product name, image and price are
// copied out of the catalog and never re-joined, so later catalog edits cannot
// rewrite order history.
type OrderItem struct {
	ID             pgtype.UUID
	OrderID        pgtype.UUID
	ProductID      pgtype.UUID
	ProductName    string
	ImageURL       string
	Quantity       int32
	UnitPriceCents int32
	TotalCents     int32
}

// OrderDetail aggregates an order with its items.
type OrderDetail struct {
	Order Order
	Items []OrderItem
}
