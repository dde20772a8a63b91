package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/dunelark/storefront/internal/domain"
)

// CouponHandler serves coupon validation and management endpoints.
type CouponHandler struct {
	coupons domain.CouponService
	logger  *slog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(coupons domain.CouponService, logger *slog.Logger) *CouponHandler {
	return &CouponHandler{coupons: coupons, logger: logger}
}

type validateCouponRequest struct {
	Code             string `json:"code" validate:"required"`
	OrderAmountCents int32  `json:"order_amount_cents" validate:"min=0"`
}

type validateCouponResponse struct {
	Valid         bool   `json:"valid"`
	Message       string `json:"message,omitempty"`
	DiscountCents int32  `json:"discount_cents"`
	Code          string `json:"code,omitempty"`
}

// Validate handles POST /coupons/validate. Validation failures that are the
// customer's problem (expired, below minimum, ...) come back as 200 with
// valid=false and a message, not as errors; checkout previews call this on
// every keystroke.
func (h *CouponHandler) Validate(c echo.Context) error {
	var req validateCouponRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, domain.Invalid("coupon.validate", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	ctx := c.Request().Context()
	var (
		validation *domain.CouponValidation
		err        error
	)
	if raw := c.Request().Header.Get(UserIDHeader); raw != "" {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return respondError(c, h.logger, domain.Invalid("coupon.validate", "malformed user ID"))
		}
		validation, err = h.coupons.ValidateForUser(ctx, pgtype.UUID{Bytes: id, Valid: true}, req.Code, req.OrderAmountCents)
	} else {
		validation, err = h.coupons.Validate(ctx, req.Code, req.OrderAmountCents)
	}
	if err != nil {
		if domain.IsCode(err, domain.EINTERNAL) {
			return respondError(c, h.logger, err)
		}
		return c.JSON(http.StatusOK, validateCouponResponse{
			Valid:   false,
			Message: domain.ErrorMessage(err),
		})
	}

	resp := validateCouponResponse{
		Valid:         validation.Valid,
		Message:       validation.Message,
		DiscountCents: validation.DiscountCents,
	}
	if validation.Coupon != nil {
		resp.Code = validation.Coupon.Code
	}
	return c.JSON(http.StatusOK, resp)
}

type createCouponRequest struct {
	Code          string     `json:"code"`
	CodePrefix    string     `json:"code_prefix"`
	DiscountType  string     `json:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	DiscountValue int32      `json:"discount_value" validate:"required,min=1"`
	MinOrderCents *int32     `json:"min_order_cents"`
	StartsAt      *time.Time `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at"`
	Active        bool       `json:"active"`
	MaxUsageCount *int32     `json:"max_usage_count"`
}

type couponResponse struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue int32      `json:"discount_value"`
	MinOrderCents *int32     `json:"min_order_cents,omitempty"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	Active        bool       `json:"active"`
	MaxUsageCount *int32     `json:"max_usage_count,omitempty"`
	UsageCount    int32      `json:"usage_count"`
}

func toCouponResponse(coupon *domain.Coupon) couponResponse {
	resp := couponResponse{
		ID:            uuid.UUID(coupon.ID.Bytes).String(),
		Code:          coupon.Code,
		DiscountType:  coupon.DiscountType,
		DiscountValue: coupon.DiscountValue,
		Active:        coupon.Active,
		UsageCount:    coupon.UsageCount,
	}
	if coupon.MinOrderCents.Valid {
		v := coupon.MinOrderCents.Int32
		resp.MinOrderCents = &v
	}
	if coupon.StartsAt.Valid {
		t := coupon.StartsAt.Time
		resp.StartsAt = &t
	}
	if coupon.EndsAt.Valid {
		t := coupon.EndsAt.Time
		resp.EndsAt = &t
	}
	if coupon.MaxUsageCount.Valid {
		v := coupon.MaxUsageCount.Int32
		resp.MaxUsageCount = &v
	}
	return resp
}

// Create handles POST /coupons.
func (h *CouponHandler) Create(c echo.Context) error {
	var req createCouponRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, domain.Invalid("coupon.create", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	params := domain.CreateCouponParams{
		Code:          req.Code,
		CodePrefix:    req.CodePrefix,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinOrderCents: req.MinOrderCents,
		Active:        req.Active,
		MaxUsageCount: req.MaxUsageCount,
	}
	if req.StartsAt != nil {
		params.StartsAt = pgtype.Timestamptz{Time: *req.StartsAt, Valid: true}
	}
	if req.EndsAt != nil {
		params.EndsAt = pgtype.Timestamptz{Time: *req.EndsAt, Valid: true}
	}

	coupon, err := h.coupons.CreateCoupon(c.Request().Context(), params)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, toCouponResponse(coupon))
}

type assignCouponRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// Assign handles POST /coupons/:couponID/assignments.
func (h *CouponHandler) Assign(c echo.Context) error {
	couponID, err := parseUUIDParam(c, "couponID")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req assignCouponRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, domain.Invalid("coupon.assign", "malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	userID, _ := uuid.Parse(req.UserID)
	if err := h.coupons.AssignToUser(c.Request().Context(),
		pgtype.UUID{Bytes: userID, Valid: true}, couponID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
