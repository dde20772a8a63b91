package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getProduct = `
SELECT id, name, slug, description, image_url, price_cents, stock_quantity, active, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id pgtype.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.ImageUrl,
		&p.PriceCents,
		&p.StockQuantity,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const listActiveProducts = `
SELECT id, name, slug, description, image_url, price_cents, stock_quantity, active, created_at, updated_at
FROM products
WHERE active = true
ORDER BY name
`

func (q *Queries) ListActiveProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listActiveProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.ImageUrl,
			&p.PriceCents,
			&p.StockQuantity,
			&p.Active,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// decrementProductStock only succeeds when enough stock remains; zero rows
// affected means another checkout won the race.
const decrementProductStock = `
UPDATE products
SET stock_quantity = stock_quantity - $2, updated_at = now()
WHERE id = $1 AND stock_quantity >= $2
`

type DecrementProductStockParams struct {
	ID       pgtype.UUID
	Quantity int32
}

func (q *Queries) DecrementProductStock(ctx context.Context, arg DecrementProductStockParams) (int64, error) {
	tag, err := q.db.Exec(ctx, decrementProductStock, arg.ID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const incrementProductStock = `
UPDATE products
SET stock_quantity = stock_quantity + $2, updated_at = now()
WHERE id = $1
`

type IncrementProductStockParams struct {
	ID       pgtype.UUID
	Quantity int32
}

func (q *Queries) IncrementProductStock(ctx context.Context, arg IncrementProductStockParams) error {
	_, err := q.db.Exec(ctx, incrementProductStock, arg.ID, arg.Quantity)
	return err
}
