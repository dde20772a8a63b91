package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dunelark/storefront/internal/domain"
	"github.com/dunelark/storefront/internal/repository"
	"github.com/dunelark/storefront/internal/telemetry"
)

type cartService struct {
	store   repository.Store
	metrics *telemetry.BusinessMetrics
}

// NewCartService creates a new CartService instance.
func NewCartService(store repository.Store, metrics *telemetry.BusinessMetrics) domain.CartService {
	return &cartService{store: store, metrics: metrics}
}

// Compile-time check that cartService implements domain.CartService.
var _ domain.CartService = (*cartService)(nil)

// GetOrCreateCart retrieves the identity's cart, creating an empty one on
// first access.
func (s *cartService) GetOrCreateCart(ctx context.Context, identity domain.Identity) (*domain.CartSummary, error) {
	cart, err := s.resolveOrCreateCart(ctx, s.store, identity)
	if err != nil {
		return nil, err
	}
	return s.buildSummary(ctx, s.store, cart)
}

// AddItem adds a product to the cart or bumps the quantity of an existing
// line. The catalog price is (re-)captured at the time of this call, and the
// stock check applies to the combined quantity.
func (s *cartService) AddItem(ctx context.Context, identity domain.Identity, productID pgtype.UUID, quantity int32) (*domain.CartSummary, error) {
	const op = "cart.add_item"

	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, op, "failed to load product")
	}
	if !product.Active {
		return nil, domain.ErrProductNotFound
	}

	cart, err := s.resolveOrCreateCart(ctx, s.store, identity)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetCartItem(ctx, repository.GetCartItemParams{
		CartID:    cart.ID,
		ProductID: productID,
	})
	switch {
	case err == nil:
		newQuantity := existing.Quantity + quantity
		if newQuantity > product.StockQuantity {
			return nil, insufficientStock(op, product.Name)
		}
		if err := s.store.UpdateCartItem(ctx, repository.UpdateCartItemParams{
			ID:             existing.ID,
			Quantity:       newQuantity,
			UnitPriceCents: product.PriceCents,
		}); err != nil {
			return nil, domain.Internal(err, op, "failed to update cart item")
		}
	case errors.Is(err, pgx.ErrNoRows):
		if quantity > product.StockQuantity {
			return nil, insufficientStock(op, product.Name)
		}
		if _, err := s.store.CreateCartItem(ctx, repository.CreateCartItemParams{
			CartID:         cart.ID,
			ProductID:      productID,
			Quantity:       quantity,
			UnitPriceCents: product.PriceCents,
		}); err != nil {
			return nil, domain.Internal(err, op, "failed to add cart item")
		}
	default:
		return nil, domain.Internal(err, op, "failed to load cart item")
	}

	if s.metrics != nil {
		s.metrics.CartItemsAdded.Inc()
	}
	return s.buildSummary(ctx, s.store, cart)
}

// UpdateQuantity sets the quantity of an existing cart line. The captured
// price is left untouched; only AddItem re-reads the catalog price.
func (s *cartService) UpdateQuantity(ctx context.Context, identity domain.Identity, cartItemID pgtype.UUID, quantity int32) (*domain.CartSummary, error) {
	const op = "cart.update_quantity"

	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	cart, item, err := s.ownedItem(ctx, identity, cartItemID, op)
	if err != nil {
		return nil, err
	}

	product, err := s.store.GetProduct(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, op, "failed to load product")
	}
	if quantity > product.StockQuantity {
		return nil, insufficientStock(op, product.Name)
	}

	if err := s.store.UpdateCartItem(ctx, repository.UpdateCartItemParams{
		ID:             item.ID,
		Quantity:       quantity,
		UnitPriceCents: item.UnitPriceCents,
	}); err != nil {
		return nil, domain.Internal(err, op, "failed to update cart item")
	}

	return s.buildSummary(ctx, s.store, cart)
}

// RemoveItem removes a cart line. Removing a line that is already gone is not
// an error.
func (s *cartService) RemoveItem(ctx context.Context, identity domain.Identity, cartItemID pgtype.UUID) (*domain.CartSummary, error) {
	const op = "cart.remove_item"

	cart, item, err := s.ownedItem(ctx, identity, cartItemID, op)
	if err != nil {
		if errors.Is(err, domain.ErrCartItemNotFound) {
			return s.GetOrCreateCart(ctx, identity)
		}
		return nil, err
	}

	if err := s.store.RemoveCartItem(ctx, item.ID); err != nil {
		return nil, domain.Internal(err, op, "failed to remove cart item")
	}

	return s.buildSummary(ctx, s.store, cart)
}

// Clear removes all lines from the identity's cart. Idempotent: a missing
// cart counts as already clear.
func (s *cartService) Clear(ctx context.Context, identity domain.Identity) error {
	const op = "cart.clear"

	cart, err := s.resolveCart(ctx, s.store, identity)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil
		}
		return err
	}

	if err := s.store.ClearCart(ctx, cart.ID); err != nil {
		return domain.Internal(err, op, "failed to clear cart")
	}
	return nil
}

// MergeGuestIntoUser folds a guest cart into the user's cart after login.
// Colliding lines are summed and silently clamped to available stock: the
// merge runs post-login with no user-facing error surface, so overflow is
// dropped rather than surfaced. The guest cart is deleted afterward.
func (s *cartService) MergeGuestIntoUser(ctx context.Context, userID pgtype.UUID, guestToken string) (*domain.CartSummary, error) {
	const op = "cart.merge"

	var userCart repository.Cart

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		guestCart, err := q.GetCartBySessionToken(ctx, guestToken)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Nothing to merge.
				var uerr error
				userCart, uerr = s.resolveOrCreateCart(ctx, q, domain.UserIdentity(userID))
				return uerr
			}
			return domain.Internal(err, op, "failed to load guest cart")
		}

		userCart, err = s.resolveOrCreateCart(ctx, q, domain.UserIdentity(userID))
		if err != nil {
			return err
		}

		guestItems, err := q.GetCartItems(ctx, guestCart.ID)
		if err != nil {
			return domain.Internal(err, op, "failed to load guest cart items")
		}

		for _, gi := range guestItems {
			existing, err := q.GetCartItem(ctx, repository.GetCartItemParams{
				CartID:    userCart.ID,
				ProductID: gi.ProductID,
			})
			switch {
			case err == nil:
				merged := clampQuantity(existing.Quantity+gi.Quantity, gi.StockQuantity)
				if merged == existing.Quantity {
					continue
				}
				if err := q.UpdateCartItem(ctx, repository.UpdateCartItemParams{
					ID:             existing.ID,
					Quantity:       merged,
					UnitPriceCents: existing.UnitPriceCents,
				}); err != nil {
					return domain.Internal(err, op, "failed to merge cart item")
				}
			case errors.Is(err, pgx.ErrNoRows):
				moved := clampQuantity(gi.Quantity, gi.StockQuantity)
				if moved < 1 {
					continue
				}
				if _, err := q.CreateCartItem(ctx, repository.CreateCartItemParams{
					CartID:         userCart.ID,
					ProductID:      gi.ProductID,
					Quantity:       moved,
					UnitPriceCents: gi.UnitPriceCents,
				}); err != nil {
					return domain.Internal(err, op, "failed to move cart item")
				}
			default:
				return domain.Internal(err, op, "failed to load user cart item")
			}
		}

		if err := q.DeleteCart(ctx, guestCart.ID); err != nil {
			return domain.Internal(err, op, "failed to delete guest cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.buildSummary(ctx, s.store, userCart)
}

// resolveCart loads the cart for an identity without creating one.
func (s *cartService) resolveCart(ctx context.Context, q repository.Querier, identity domain.Identity) (repository.Cart, error) {
	const op = "cart.resolve"

	if !identity.Valid() {
		return repository.Cart{}, domain.Invalid(op, "identity is required")
	}

	var (
		cart repository.Cart
		err  error
	)
	if identity.IsUser() {
		cart, err = q.GetCartByUserID(ctx, identity.UserID())
	} else {
		cart, err = q.GetCartBySessionToken(ctx, identity.Token())
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Cart{}, domain.ErrCartNotFound
		}
		return repository.Cart{}, domain.Internal(err, op, "failed to load cart")
	}
	return cart, nil
}

// resolveOrCreateCart loads the identity's cart, lazily creating an empty one.
func (s *cartService) resolveOrCreateCart(ctx context.Context, q repository.Querier, identity domain.Identity) (repository.Cart, error) {
	const op = "cart.get_or_create"

	cart, err := s.resolveCart(ctx, q, identity)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrCartNotFound) {
		return repository.Cart{}, err
	}

	params := repository.CreateCartParams{}
	if identity.IsUser() {
		params.UserID = identity.UserID()
	} else {
		params.SessionToken = pgtype.Text{String: identity.Token(), Valid: true}
	}

	cart, err = q.CreateCart(ctx, params)
	if err != nil {
		return repository.Cart{}, domain.Internal(err, op, "failed to create cart")
	}
	return cart, nil
}

// ownedItem loads a cart line and checks it belongs to the identity's cart.
func (s *cartService) ownedItem(ctx context.Context, identity domain.Identity, cartItemID pgtype.UUID, op string) (repository.Cart, repository.CartItem, error) {
	cart, err := s.resolveCart(ctx, s.store, identity)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return repository.Cart{}, repository.CartItem{}, domain.ErrCartItemNotFound
		}
		return repository.Cart{}, repository.CartItem{}, err
	}

	item, err := s.store.GetCartItemByID(ctx, cartItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Cart{}, repository.CartItem{}, domain.ErrCartItemNotFound
		}
		return repository.Cart{}, repository.CartItem{}, domain.Internal(err, op, "failed to load cart item")
	}
	if item.CartID != cart.ID {
		return repository.Cart{}, repository.CartItem{}, domain.Forbidden(op, "cart item belongs to another cart")
	}
	return cart, item, nil
}

// buildSummary assembles the cart view with line and cart totals.
func (s *cartService) buildSummary(ctx context.Context, q repository.Querier, cart repository.Cart) (*domain.CartSummary, error) {
	const op = "cart.summary"

	rows, err := q.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load cart items")
	}

	items := make([]domain.CartItem, 0, len(rows))
	var subtotal int32
	var count int
	for _, row := range rows {
		lineTotal := row.Quantity * row.UnitPriceCents
		subtotal += lineTotal
		count += int(row.Quantity)

		items = append(items, domain.CartItem{
			ID:             row.ID,
			ProductID:      row.ProductID,
			ProductName:    row.ProductName,
			ImageURL:       row.ImageUrl.String,
			Quantity:       row.Quantity,
			UnitPriceCents: row.UnitPriceCents,
			LineTotalCents: lineTotal,
		})
	}

	return &domain.CartSummary{
		Cart: domain.Cart{
			ID:           cart.ID,
			UserID:       cart.UserID,
			SessionToken: cart.SessionToken,
			CreatedAt:    cart.CreatedAt,
			UpdatedAt:    cart.UpdatedAt,
		},
		Items:         items,
		SubtotalCents: subtotal,
		ItemCount:     count,
	}, nil
}

func clampQuantity(want, stock int32) int32 {
	if want > stock {
		return stock
	}
	return want
}
