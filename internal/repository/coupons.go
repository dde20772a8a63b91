package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getCouponByCode = `
SELECT id, code, discount_type, discount_value, min_order_cents, starts_at, ends_at,
       active, max_usage_count, usage_count, created_at, updated_at
FROM coupons
WHERE lower(code) = lower($1)
`

func (q *Queries) GetCouponByCode(ctx context.Context, code string) (Coupon, error) {
	row := q.db.QueryRow(ctx, getCouponByCode, code)
	return scanCoupon(row)
}

const getCouponByID = `
SELECT id, code, discount_type, discount_value, min_order_cents, starts_at, ends_at,
       active, max_usage_count, usage_count, created_at, updated_at
FROM coupons
WHERE id = $1
`

func (q *Queries) GetCouponByID(ctx context.Context, id pgtype.UUID) (Coupon, error) {
	row := q.db.QueryRow(ctx, getCouponByID, id)
	return scanCoupon(row)
}

const createCoupon = `
INSERT INTO coupons (code, discount_type, discount_value, min_order_cents, starts_at, ends_at, active, max_usage_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, code, discount_type, discount_value, min_order_cents, starts_at, ends_at,
          active, max_usage_count, usage_count, created_at, updated_at
`

type CreateCouponParams struct {
	Code          string
	DiscountType  string
	DiscountValue int32
	MinOrderCents pgtype.Int4
	StartsAt      pgtype.Timestamptz
	EndsAt        pgtype.Timestamptz
	Active        bool
	MaxUsageCount pgtype.Int4
}

func (q *Queries) CreateCoupon(ctx context.Context, arg CreateCouponParams) (Coupon, error) {
	row := q.db.QueryRow(ctx, createCoupon,
		arg.Code,
		arg.DiscountType,
		arg.DiscountValue,
		arg.MinOrderCents,
		arg.StartsAt,
		arg.EndsAt,
		arg.Active,
		arg.MaxUsageCount,
	)
	return scanCoupon(row)
}

// incrementCouponUsage is guarded against the max-usage limit; zero rows
// affected means the limit was reached by a concurrent redemption.
const incrementCouponUsage = `
UPDATE coupons
SET usage_count = usage_count + 1, updated_at = now()
WHERE id = $1 AND (max_usage_count IS NULL OR usage_count < max_usage_count)
`

func (q *Queries) IncrementCouponUsage(ctx context.Context, couponID pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, incrementCouponUsage, couponID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const getUserCoupon = `
SELECT id, user_id, coupon_id, used, assigned_at, used_at, order_id
FROM user_coupons
WHERE user_id = $1 AND coupon_id = $2
`

type GetUserCouponParams struct {
	UserID   pgtype.UUID
	CouponID pgtype.UUID
}

func (q *Queries) GetUserCoupon(ctx context.Context, arg GetUserCouponParams) (UserCoupon, error) {
	row := q.db.QueryRow(ctx, getUserCoupon, arg.UserID, arg.CouponID)
	var uc UserCoupon
	err := row.Scan(&uc.ID, &uc.UserID, &uc.CouponID, &uc.Used, &uc.AssignedAt, &uc.UsedAt, &uc.OrderID)
	return uc, err
}

const createUserCoupon = `
INSERT INTO user_coupons (user_id, coupon_id)
VALUES ($1, $2)
RETURNING id, user_id, coupon_id, used, assigned_at, used_at, order_id
`

type CreateUserCouponParams struct {
	UserID   pgtype.UUID
	CouponID pgtype.UUID
}

func (q *Queries) CreateUserCoupon(ctx context.Context, arg CreateUserCouponParams) (UserCoupon, error) {
	row := q.db.QueryRow(ctx, createUserCoupon, arg.UserID, arg.CouponID)
	var uc UserCoupon
	err := row.Scan(&uc.ID, &uc.UserID, &uc.CouponID, &uc.Used, &uc.AssignedAt, &uc.UsedAt, &uc.OrderID)
	return uc, err
}

// markUserCouponUsed only flips an unused ledger row; zero rows affected means
// the coupon was already consumed.
const markUserCouponUsed = `
UPDATE user_coupons
SET used = true, used_at = now(), order_id = $3
WHERE user_id = $1 AND coupon_id = $2 AND used = false
`

type MarkUserCouponUsedParams struct {
	UserID   pgtype.UUID
	CouponID pgtype.UUID
	OrderID  pgtype.UUID
}

func (q *Queries) MarkUserCouponUsed(ctx context.Context, arg MarkUserCouponUsedParams) (int64, error) {
	tag, err := q.db.Exec(ctx, markUserCouponUsed, arg.UserID, arg.CouponID, arg.OrderID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// couponHasAssignments distinguishes targeted coupons (assigned to specific
// users) from public ones.
const couponHasAssignments = `
SELECT EXISTS (SELECT 1 FROM user_coupons WHERE coupon_id = $1)
`

func (q *Queries) CouponHasAssignments(ctx context.Context, couponID pgtype.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, couponHasAssignments, couponID).Scan(&exists)
	return exists, err
}

type couponRow interface {
	Scan(dest ...interface{}) error
}

func scanCoupon(row couponRow) (Coupon, error) {
	var c Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MinOrderCents,
		&c.StartsAt,
		&c.EndsAt,
		&c.Active,
		&c.MaxUsageCount,
		&c.UsageCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
