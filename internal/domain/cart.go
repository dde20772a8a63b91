package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Cart-related domain errors.
var (
	ErrCartNotFound      = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartItemNotFound  = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrInvalidQuantity   = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
	ErrInsufficientStock = &Error{Code: ECONFLICT, Message: "Insufficient stock for one or more items"}
)

// CartService provides business logic for shopping cart operations.
// Every operation is scoped to an Identity (registered user or guest session).
type CartService interface {
	// GetOrCreateCart retrieves the identity's cart, creating an empty one on
	// first access.
	GetOrCreateCart(ctx context.Context, identity Identity) (*CartSummary, error)

	// AddItem adds a product to the cart, capturing the catalog price at call
	// time. If the product is already a line, quantities are summed and the
	// stock check is re-applied to the new total.
	AddItem(ctx context.Context, identity Identity, productID pgtype.UUID, quantity int32) (*CartSummary, error)

	// UpdateQuantity sets the quantity of an existing cart line. Quantity must
	// be at least 1; removal is a distinct operation.
	UpdateQuantity(ctx context.Context, identity Identity, cartItemID pgtype.UUID, quantity int32) (*CartSummary, error)

	// RemoveItem removes a cart line. Idempotent.
	RemoveItem(ctx context.Context, identity Identity, cartItemID pgtype.UUID) (*CartSummary, error)

	// Clear removes all lines from the identity's cart. Idempotent.
	Clear(ctx context.Context, identity Identity) error

	// MergeGuestIntoUser folds a guest cart into the user's cart after login.
	// Colliding lines are summed and clamped to current stock; the guest cart
	// is deleted afterward.
	MergeGuestIntoUser(ctx context.Context, userID pgtype.UUID, guestToken string) (*CartSummary, error)
}

// Cart represents a lightweight cart view model.
type Cart struct {
	ID           pgtype.UUID
	UserID       pgtype.UUID
	SessionToken pgtype.Text
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

// CartSummary aggregates cart information with items and calculated totals.
type CartSummary struct {
	Cart          Cart
	Items         []CartItem
	SubtotalCents int32
	ItemCount     int
}

// CartItem represents a cart line item with product details and line total.
// UnitPriceCents is the price captured when the line was added, not the live
// catalog price.
type CartItem struct {
	ID             pgtype.UUID
	ProductID      pgtype.UUID
	ProductName    string
	ImageURL       string
	Quantity       int32
	UnitPriceCents int32
	LineTotalCents int32
}
