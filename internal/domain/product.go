package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Product-related domain errors.
var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
)

// CatalogService exposes the read-mostly product catalog to the fulfillment
// core. Stock mutation happens inside order transactions, not here.
type CatalogService interface {
	// GetProduct retrieves a single product with its current price and stock.
	GetProduct(ctx context.Context, productID pgtype.UUID) (*Product, error)

	// ListProducts returns all active products.
	ListProducts(ctx context.Context) ([]Product, error)
}

// Product is a catalog snapshot used for price/stock lookups.
type Product struct {
	ID            pgtype.UUID
	Name          string
	Slug          string
	Description   string
	ImageURL      string
	PriceCents    int32
	StockQuantity int32
	Active        bool
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}
