package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/dunelark/storefront/internal/domain"
)

// CartHandler serves the shopping cart endpoints. All of them work for both
// authenticated users and guests; identity resolution lives in one place.
type CartHandler struct {
	carts  domain.CartService
	logger *slog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts domain.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

type cartItemResponse struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	ImageURL       string `json:"image_url,omitempty"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int32  `json:"unit_price_cents"`
	LineTotalCents int32  `json:"line_total_cents"`
}

type cartResponse struct {
	ID            string             `json:"id"`
	Items         []cartItemResponse `json:"items"`
	SubtotalCents int32              `json:"subtotal_cents"`
	ItemCount     int                `json:"item_count"`
}

func toCartResponse(summary *domain.CartSummary) cartResponse {
	resp := cartResponse{
		ID:            uuid.UUID(summary.Cart.ID.Bytes).String(),
		Items:         make([]cartItemResponse, len(summary.Items)),
		SubtotalCents: summary.SubtotalCents,
		ItemCount:     summary.ItemCount,
	}
	for i, item := range summary.Items {
		resp.Items[i] = cartItemResponse{
			ID:             uuid.UUID(item.ID.Bytes).String(),
			ProductID:      uuid.UUID(item.ProductID.Bytes).String(),
			ProductName:    item.ProductName,
			ImageURL:       item.ImageURL,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents,
		}
	}
	return resp
}

// GetCart handles GET /cart.
func (h *CartHandler) GetCart(c echo.Context) error {
	identity, err := requestIdentity(c, true)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	summary, err := h.carts.GetOrCreateCart(c.Request().Context(), identity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(summary))
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int32  `json:"quantity" validate:"required,min=1"`
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(c echo.Context) error {
	identity, err := requestIdentity(c, true)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, domain.Invalid("cart.add_item", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	productID, _ := uuid.Parse(req.ProductID)
	summary, err := h.carts.AddItem(c.Request().Context(), identity,
		pgtype.UUID{Bytes: productID, Valid: true}, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(summary))
}

type updateQuantityRequest struct {
	Quantity int32 `json:"quantity" validate:"required,min=1"`
}

// UpdateQuantity handles PATCH /cart/items/:itemID.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	identity, err := requestIdentity(c, false)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	itemID, err := parseUUIDParam(c, "itemID")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, domain.Invalid("cart.update_quantity", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	summary, err := h.carts.UpdateQuantity(c.Request().Context(), identity, itemID, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(summary))
}

// RemoveItem handles DELETE /cart/items/:itemID.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	identity, err := requestIdentity(c, false)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	itemID, err := parseUUIDParam(c, "itemID")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	summary, err := h.carts.RemoveItem(c.Request().Context(), identity, itemID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(summary))
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(c echo.Context) error {
	identity, err := requestIdentity(c, false)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.carts.Clear(c.Request().Context(), identity); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Merge handles POST /cart/merge: folds the guest session's cart into the
// authenticated user's cart after login.
func (h *CartHandler) Merge(c echo.Context) error {
	identity, err := userIdentity(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	cookie, err := c.Cookie(GuestSessionCookie)
	if err != nil || cookie.Value == "" {
		return respondError(c, h.logger, domain.Invalid("cart.merge", "no guest session to merge"))
	}

	summary, err := h.carts.MergeGuestIntoUser(c.Request().Context(), identity.UserID(), cookie.Value)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	// The guest session is consumed by the merge.
	c.SetCookie(&http.Cookie{
		Name:     GuestSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, toCartResponse(summary))
}
