package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Coupon-related domain errors. Validation failures carry distinct messages so
// the storefront can tell the customer exactly why a code was rejected.
var (
	ErrCouponNotFound        = &Error{Code: ENOTFOUND, Message: "Coupon code not found"}
	ErrCouponInactive        = &Error{Code: EINVALID, Message: "This coupon is no longer active"}
	ErrCouponNotStarted      = &Error{Code: EINVALID, Message: "This coupon is not active yet"}
	ErrCouponExpired         = &Error{Code: EINVALID, Message: "This coupon has expired"}
	ErrCouponBelowMinimum    = &Error{Code: EINVALID, Message: "Order amount is below the coupon minimum"}
	ErrCouponNotAssigned     = &Error{Code: EFORBIDDEN, Message: "This coupon is not assigned to your account"}
	ErrCouponAlreadyUsed     = &Error{Code: ECONFLICT, Message: "You have already used this coupon"}
	ErrCouponUsageExceeded   = &Error{Code: ECONFLICT, Message: "This coupon has reached its usage limit"}
	ErrCouponCodeTaken       = &Error{Code: ECONFLICT, Message: "Coupon code already exists"}
	ErrCouponAlreadyAssigned = &Error{Code: ECONFLICT, Message: "Coupon already assigned to this user"}
)

// Discount types.
const (
	DiscountPercentage  = "percentage"
	DiscountFixedAmount = "fixed_amount"
)

// CouponService validates and consumes discount coupons.
type CouponService interface {
	// Validate checks a public code against activation, validity window and
	// minimum order amount, and computes the discount for orderAmountCents.
	Validate(ctx context.Context, code string, orderAmountCents int32) (*CouponValidation, error)

	// ValidateForUser is Validate plus the per-user assignment ledger: if a
	// UserCoupon row exists for (userID, coupon) it must be unused; coupons
	// with no assignment rows for this user are treated as public.
	ValidateForUser(ctx context.Context, userID pgtype.UUID, code string, orderAmountCents int32) (*CouponValidation, error)

	// MarkUsed consumes a coupon for a successful order: flips the user's
	// ledger row and increments the usage counter, guarded against the
	// max-usage limit. Must be called exactly once per order that used a
	// coupon, inside the order transaction.
	MarkUsed(ctx context.Context, userID, couponID, orderID pgtype.UUID) error

	// AssignToUser grants a coupon to a user. A (user, coupon) pair may exist
	// at most once.
	AssignToUser(ctx context.Context, userID, couponID pgtype.UUID) error

	// CreateCoupon creates a coupon, generating a code when none is supplied
	// and retrying on code collision.
	CreateCoupon(ctx context.Context, params CreateCouponParams) (*Coupon, error)
}

// Coupon is a discount code definition.
type Coupon struct {
	ID             pgtype.UUID
	Code           string
	DiscountType   string
	DiscountValue  int32 // percent (0-100) or cents, per DiscountType
	MinOrderCents  pgtype.Int4
	StartsAt       pgtype.Timestamptz
	EndsAt         pgtype.Timestamptz
	Active         bool
	MaxUsageCount  pgtype.Int4
	UsageCount     int32
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

// UserCoupon is one row of the per-user assignment ledger.
type UserCoupon struct {
	ID         pgtype.UUID
	UserID     pgtype.UUID
	CouponID   pgtype.UUID
	Used       bool
	AssignedAt pgtype.Timestamptz
	UsedAt     pgtype.Timestamptz
	OrderID    pgtype.UUID
}

// CouponValidation is the outcome of a validation call. DiscountCents is
// already clamped so the discount can never exceed the order amount.
type CouponValidation struct {
	Valid         bool
	Message       string
	DiscountCents int32
	Coupon        *Coupon
}

// CreateCouponParams contains parameters for creating a coupon.
type CreateCouponParams struct {
	Code          string // empty = generate
	CodePrefix    string // only used when generating
	DiscountType  string
	DiscountValue int32
	MinOrderCents *int32
	StartsAt      pgtype.Timestamptz
	EndsAt        pgtype.Timestamptz
	Active        bool
	MaxUsageCount *int32
}
