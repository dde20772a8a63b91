package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getCartByUserID = `
SELECT id, user_id, session_token, created_at, updated_at
FROM carts
WHERE user_id = $1
`

func (q *Queries) GetCartByUserID(ctx context.Context, userID pgtype.UUID) (Cart, error) {
	row := q.db.QueryRow(ctx, getCartByUserID, userID)
	var c Cart
	err := row.Scan(&c.ID, &c.UserID, &c.SessionToken, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getCartBySessionToken = `
SELECT id, user_id, session_token, created_at, updated_at
FROM carts
WHERE session_token = $1
`

func (q *Queries) GetCartBySessionToken(ctx context.Context, token string) (Cart, error) {
	row := q.db.QueryRow(ctx, getCartBySessionToken, token)
	var c Cart
	err := row.Scan(&c.ID, &c.UserID, &c.SessionToken, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const createCart = `
INSERT INTO carts (user_id, session_token)
VALUES ($1, $2)
RETURNING id, user_id, session_token, created_at, updated_at
`

type CreateCartParams struct {
	UserID       pgtype.UUID
	SessionToken pgtype.Text
}

func (q *Queries) CreateCart(ctx context.Context, arg CreateCartParams) (Cart, error) {
	row := q.db.QueryRow(ctx, createCart, arg.UserID, arg.SessionToken)
	var c Cart
	err := row.Scan(&c.ID, &c.UserID, &c.SessionToken, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const deleteCart = `
DELETE FROM carts WHERE id = $1
`

func (q *Queries) DeleteCart(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, deleteCart, id)
	return err
}

const getCartItems = `
SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.unit_price_cents,
       p.name AS product_name, p.image_url, p.stock_quantity
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at
`

func (q *Queries) GetCartItems(ctx context.Context, cartID pgtype.UUID) ([]GetCartItemsRow, error) {
	rows, err := q.db.Query(ctx, getCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []GetCartItemsRow
	for rows.Next() {
		var i GetCartItemsRow
		if err := rows.Scan(
			&i.ID,
			&i.CartID,
			&i.ProductID,
			&i.Quantity,
			&i.UnitPriceCents,
			&i.ProductName,
			&i.ImageUrl,
			&i.StockQuantity,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getCartItem = `
SELECT id, cart_id, product_id, quantity, unit_price_cents, created_at, updated_at
FROM cart_items
WHERE cart_id = $1 AND product_id = $2
`

type GetCartItemParams struct {
	CartID    pgtype.UUID
	ProductID pgtype.UUID
}

func (q *Queries) GetCartItem(ctx context.Context, arg GetCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, getCartItem, arg.CartID, arg.ProductID)
	var i CartItem
	err := row.Scan(&i.ID, &i.CartID, &i.ProductID, &i.Quantity, &i.UnitPriceCents, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getCartItemByID = `
SELECT id, cart_id, product_id, quantity, unit_price_cents, created_at, updated_at
FROM cart_items
WHERE id = $1
`

func (q *Queries) GetCartItemByID(ctx context.Context, id pgtype.UUID) (CartItem, error) {
	row := q.db.QueryRow(ctx, getCartItemByID, id)
	var i CartItem
	err := row.Scan(&i.ID, &i.CartID, &i.ProductID, &i.Quantity, &i.UnitPriceCents, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createCartItem = `
INSERT INTO cart_items (cart_id, product_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4)
RETURNING id, cart_id, product_id, quantity, unit_price_cents, created_at, updated_at
`

type CreateCartItemParams struct {
	CartID         pgtype.UUID
	ProductID      pgtype.UUID
	Quantity       int32
	UnitPriceCents int32
}

func (q *Queries) CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, createCartItem, arg.CartID, arg.ProductID, arg.Quantity, arg.UnitPriceCents)
	var i CartItem
	err := row.Scan(&i.ID, &i.CartID, &i.ProductID, &i.Quantity, &i.UnitPriceCents, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const updateCartItem = `
UPDATE cart_items
SET quantity = $2, unit_price_cents = $3, updated_at = now()
WHERE id = $1
`

type UpdateCartItemParams struct {
	ID             pgtype.UUID
	Quantity       int32
	UnitPriceCents int32
}

func (q *Queries) UpdateCartItem(ctx context.Context, arg UpdateCartItemParams) error {
	_, err := q.db.Exec(ctx, updateCartItem, arg.ID, arg.Quantity, arg.UnitPriceCents)
	return err
}

const removeCartItem = `
DELETE FROM cart_items WHERE id = $1
`

func (q *Queries) RemoveCartItem(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, removeCartItem, id)
	return err
}

const clearCart = `
DELETE FROM cart_items WHERE cart_id = $1
`

func (q *Queries) ClearCart(ctx context.Context, cartID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, clearCart, cartID)
	return err
}
