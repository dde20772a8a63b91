package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the set of all database queries. Hand-written against pgx; the
// method-per-statement shape keeps services mockable in tests.
type Querier interface {
	// Products
	GetProduct(ctx context.Context, id pgtype.UUID) (Product, error)
	ListActiveProducts(ctx context.Context) ([]Product, error)
	DecrementProductStock(ctx context.Context, arg DecrementProductStockParams) (int64, error)
	IncrementProductStock(ctx context.Context, arg IncrementProductStockParams) error

	// Carts
	GetCartByUserID(ctx context.Context, userID pgtype.UUID) (Cart, error)
	GetCartBySessionToken(ctx context.Context, token string) (Cart, error)
	CreateCart(ctx context.Context, arg CreateCartParams) (Cart, error)
	DeleteCart(ctx context.Context, id pgtype.UUID) error
	GetCartItems(ctx context.Context, cartID pgtype.UUID) ([]GetCartItemsRow, error)
	GetCartItem(ctx context.Context, arg GetCartItemParams) (CartItem, error)
	GetCartItemByID(ctx context.Context, id pgtype.UUID) (CartItem, error)
	CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error)
	UpdateCartItem(ctx context.Context, arg UpdateCartItemParams) error
	RemoveCartItem(ctx context.Context, id pgtype.UUID) error
	ClearCart(ctx context.Context, cartID pgtype.UUID) error

	// Coupons
	GetCouponByCode(ctx context.Context, code string) (Coupon, error)
	GetCouponByID(ctx context.Context, id pgtype.UUID) (Coupon, error)
	CreateCoupon(ctx context.Context, arg CreateCouponParams) (Coupon, error)
	IncrementCouponUsage(ctx context.Context, couponID pgtype.UUID) (int64, error)
	CouponHasAssignments(ctx context.Context, couponID pgtype.UUID) (bool, error)
	GetUserCoupon(ctx context.Context, arg GetUserCouponParams) (UserCoupon, error)
	CreateUserCoupon(ctx context.Context, arg CreateUserCouponParams) (UserCoupon, error)
	MarkUserCouponUsed(ctx context.Context, arg MarkUserCouponUsedParams) (int64, error)

	// Addresses
	GetAddress(ctx context.Context, id pgtype.UUID) (Address, error)

	// Orders
	CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error)
	CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error)
	GetOrder(ctx context.Context, id pgtype.UUID) (Order, error)
	GetOrderItems(ctx context.Context, orderID pgtype.UUID) ([]OrderItem, error)
	ListOrdersForUser(ctx context.Context, arg ListOrdersForUserParams) ([]Order, error)
	MarkOrderShipped(ctx context.Context, id pgtype.UUID) (Order, error)
	MarkOrderDelivered(ctx context.Context, id pgtype.UUID) (Order, error)
	MarkOrderCancelled(ctx context.Context, arg MarkOrderCancelledParams) (Order, error)
	UserHasDeliveredProduct(ctx context.Context, arg UserHasDeliveredProductParams) (bool, error)

	// Invoices
	CreateInvoice(ctx context.Context, arg CreateInvoiceParams) (Invoice, error)
	GetInvoice(ctx context.Context, id pgtype.UUID) (Invoice, error)
	GetInvoiceByOrderID(ctx context.Context, orderID pgtype.UUID) (Invoice, error)

	// Email outbox
	EnqueueEmailJob(ctx context.Context, arg EnqueueEmailJobParams) (EmailJob, error)
	ClaimNextEmailJob(ctx context.Context) (EmailJob, error)
	MarkEmailJobSent(ctx context.Context, id pgtype.UUID) error
	MarkEmailJobFailed(ctx context.Context, arg MarkEmailJobFailedParams) error
}

// Compile-time check that Queries implements Querier.
var _ Querier = (*Queries)(nil)
