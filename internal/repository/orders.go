package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, user_id, customer_email, status, payment_status, payment_method,
       subtotal_cents, shipping_cents, discount_cents, total_cents, coupon_id, coupon_code,
       shipping_address_id, billing_address_id, customer_notes, cancellation_reason,
       shipped_at, delivered_at, created_at, updated_at`

const createOrder = `
INSERT INTO orders (order_number, user_id, customer_email, status, payment_status, payment_method,
                    subtotal_cents, shipping_cents, discount_cents, total_cents,
                    coupon_id, coupon_code, shipping_address_id, billing_address_id, customer_notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	OrderNumber       string
	UserID            pgtype.UUID
	CustomerEmail     string
	Status            string
	PaymentStatus     string
	PaymentMethod     string
	SubtotalCents     int32
	ShippingCents     int32
	DiscountCents     int32
	TotalCents        int32
	CouponID          pgtype.UUID
	CouponCode        pgtype.Text
	ShippingAddressID pgtype.UUID
	BillingAddressID  pgtype.UUID
	CustomerNotes     pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber,
		arg.UserID,
		arg.CustomerEmail,
		arg.Status,
		arg.PaymentStatus,
		arg.PaymentMethod,
		arg.SubtotalCents,
		arg.ShippingCents,
		arg.DiscountCents,
		arg.TotalCents,
		arg.CouponID,
		arg.CouponCode,
		arg.ShippingAddressID,
		arg.BillingAddressID,
		arg.CustomerNotes,
	)
	return scanOrder(row)
}

const createOrderItem = `
INSERT INTO order_items (order_id, product_id, product_name, image_url, quantity, unit_price_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_id, product_id, product_name, image_url, quantity, unit_price_cents, total_cents, created_at
`

type CreateOrderItemParams struct {
	OrderID        pgtype.UUID
	ProductID      pgtype.UUID
	ProductName    string
	ImageUrl       pgtype.Text
	Quantity       int32
	UnitPriceCents int32
	TotalCents     int32
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.ProductID,
		arg.ProductName,
		arg.ImageUrl,
		arg.Quantity,
		arg.UnitPriceCents,
		arg.TotalCents,
	)
	var i OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.ProductName, &i.ImageUrl,
		&i.Quantity, &i.UnitPriceCents, &i.TotalCents, &i.CreatedAt)
	return i, err
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id pgtype.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderItems = `
SELECT id, order_id, product_id, product_name, image_url, quantity, unit_price_cents, total_cents, created_at
FROM order_items
WHERE order_id = $1
ORDER BY created_at
`

func (q *Queries) GetOrderItems(ctx context.Context, orderID pgtype.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, getOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.ProductName, &i.ImageUrl,
			&i.Quantity, &i.UnitPriceCents, &i.TotalCents, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listOrdersForUser = `
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

type ListOrdersForUserParams struct {
	UserID pgtype.UUID
	Limit  int32
	Offset int32
}

func (q *Queries) ListOrdersForUser(ctx context.Context, arg ListOrdersForUserParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersForUser, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const markOrderShipped = `
UPDATE orders
SET status = 'shipped', shipped_at = now(), updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

func (q *Queries) MarkOrderShipped(ctx context.Context, id pgtype.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, markOrderShipped, id))
}

const markOrderDelivered = `
UPDATE orders
SET status = 'delivered', payment_status = 'paid', delivered_at = now(), updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

func (q *Queries) MarkOrderDelivered(ctx context.Context, id pgtype.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, markOrderDelivered, id))
}

const markOrderCancelled = `
UPDATE orders
SET status = 'cancelled', payment_status = 'refunded', cancellation_reason = $2, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type MarkOrderCancelledParams struct {
	ID     pgtype.UUID
	Reason pgtype.Text
}

func (q *Queries) MarkOrderCancelled(ctx context.Context, arg MarkOrderCancelledParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, markOrderCancelled, arg.ID, arg.Reason))
}

const userHasDeliveredProduct = `
SELECT EXISTS (
	SELECT 1
	FROM orders o
	JOIN order_items oi ON oi.order_id = o.id
	WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = 'delivered'
)
`

type UserHasDeliveredProductParams struct {
	UserID    pgtype.UUID
	ProductID pgtype.UUID
}

func (q *Queries) UserHasDeliveredProduct(ctx context.Context, arg UserHasDeliveredProductParams) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, userHasDeliveredProduct, arg.UserID, arg.ProductID).Scan(&exists)
	return exists, err
}

type orderRow interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row orderRow) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.CustomerEmail,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.SubtotalCents,
		&o.ShippingCents,
		&o.DiscountCents,
		&o.TotalCents,
		&o.CouponID,
		&o.CouponCode,
		&o.ShippingAddressID,
		&o.BillingAddressID,
		&o.CustomerNotes,
		&o.CancellationReason,
		&o.ShippedAt,
		&o.DeliveredAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}
