package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dunelark/storefront/internal/domain"
	"github.com/dunelark/storefront/internal/repository"
)

const (
	couponCodeAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	defaultCodeLength    = 10
	codeGenerateAttempts = 5
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

type couponService struct {
	store repository.Store
	now   func() time.Time
}

// NewCouponService creates a new CouponService instance.
func NewCouponService(store repository.Store) domain.CouponService {
	return &couponService{store: store, now: time.Now}
}

// Compile-time check that couponService implements domain.CouponService.
var _ domain.CouponService = (*couponService)(nil)

// Validate checks a public code and computes the discount for the given order
// amount. Checks short-circuit in a fixed order, each failure with its own
// message: exists, active, validity window, minimum order amount.
func (s *couponService) Validate(ctx context.Context, code string, orderAmountCents int32) (*domain.CouponValidation, error) {
	const op = "coupon.validate"

	coupon, err := s.lookup(ctx, op, code)
	if err != nil {
		return rejected(err), err
	}

	if err := s.check(coupon, orderAmountCents); err != nil {
		return rejected(err), err
	}

	return s.accepted(coupon, orderAmountCents), nil
}

// ValidateForUser is Validate plus the assignment ledger gate. A coupon with
// assignment rows is targeted: the caller must hold an unused assignment.
// Coupons with no assignments at all remain public and skip the gate.
func (s *couponService) ValidateForUser(ctx context.Context, userID pgtype.UUID, code string, orderAmountCents int32) (*domain.CouponValidation, error) {
	const op = "coupon.validate_for_user"

	coupon, err := s.lookup(ctx, op, code)
	if err != nil {
		return rejected(err), err
	}

	if err := s.check(coupon, orderAmountCents); err != nil {
		return rejected(err), err
	}

	targeted, err := s.store.CouponHasAssignments(ctx, coupon.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to check coupon assignments")
	}
	if targeted {
		assignment, err := s.store.GetUserCoupon(ctx, repository.GetUserCouponParams{
			UserID:   userID,
			CouponID: coupon.ID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return rejected(domain.ErrCouponNotAssigned), domain.ErrCouponNotAssigned
			}
			return nil, domain.Internal(err, op, "failed to load coupon assignment")
		}
		if assignment.Used {
			return rejected(domain.ErrCouponAlreadyUsed), domain.ErrCouponAlreadyUsed
		}
	}

	return s.accepted(coupon, orderAmountCents), nil
}

// MarkUsed consumes a coupon for a successful order.
func (s *couponService) MarkUsed(ctx context.Context, userID, couponID, orderID pgtype.UUID) error {
	return s.store.ExecTx(ctx, func(q repository.Querier) error {
		return markCouponUsed(ctx, q, userID, couponID, orderID)
	})
}

// markCouponUsed flips the user's ledger row (when one exists) and increments
// the usage counter, both guarded by conditional updates so concurrent
// redemptions against the last usage slot cannot both succeed. Runs inside
// the caller's transaction; the order engine invokes it from the order
// transaction so coupon consumption commits or rolls back with the order.
func markCouponUsed(ctx context.Context, q repository.Querier, userID, couponID, orderID pgtype.UUID) error {
	const op = "coupon.mark_used"

	affected, err := q.IncrementCouponUsage(ctx, couponID)
	if err != nil {
		return domain.Internal(err, op, "failed to increment coupon usage")
	}
	if affected == 0 {
		return domain.ErrCouponUsageExceeded
	}

	_, err = q.GetUserCoupon(ctx, repository.GetUserCouponParams{
		UserID:   userID,
		CouponID: couponID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Public coupon: no ledger row to flip.
			return nil
		}
		return domain.Internal(err, op, "failed to load coupon assignment")
	}

	affected, err = q.MarkUserCouponUsed(ctx, repository.MarkUserCouponUsedParams{
		UserID:   userID,
		CouponID: couponID,
		OrderID:  orderID,
	})
	if err != nil {
		return domain.Internal(err, op, "failed to mark coupon used")
	}
	if affected == 0 {
		return domain.ErrCouponAlreadyUsed
	}
	return nil
}

// AssignToUser grants a coupon to a user at most once.
func (s *couponService) AssignToUser(ctx context.Context, userID, couponID pgtype.UUID) error {
	const op = "coupon.assign"

	if _, err := s.store.GetCouponByID(ctx, couponID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCouponNotFound
		}
		return domain.Internal(err, op, "failed to load coupon")
	}

	if _, err := s.store.CreateUserCoupon(ctx, repository.CreateUserCouponParams{
		UserID:   userID,
		CouponID: couponID,
	}); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCouponAlreadyAssigned
		}
		return domain.Internal(err, op, "failed to assign coupon")
	}
	return nil
}

// CreateCoupon creates a coupon. When no code is supplied one is generated;
// generated codes can collide, so creation re-checks uniqueness and retries.
func (s *couponService) CreateCoupon(ctx context.Context, params domain.CreateCouponParams) (*domain.Coupon, error) {
	const op = "coupon.create"

	switch params.DiscountType {
	case domain.DiscountPercentage:
		if params.DiscountValue < 0 || params.DiscountValue > 100 {
			return nil, domain.Invalid(op, "percentage discount must be between 0 and 100")
		}
	case domain.DiscountFixedAmount:
		if params.DiscountValue < 0 {
			return nil, domain.Invalid(op, "fixed discount must not be negative")
		}
	default:
		return nil, domain.Errorf(domain.EINVALID, op, "invalid discount type: %s", params.DiscountType)
	}
	if params.StartsAt.Valid && params.EndsAt.Valid && params.EndsAt.Time.Before(params.StartsAt.Time) {
		return nil, domain.Invalid(op, "coupon validity window ends before it starts")
	}

	repoParams := repository.CreateCouponParams{
		DiscountType:  params.DiscountType,
		DiscountValue: params.DiscountValue,
		StartsAt:      params.StartsAt,
		EndsAt:        params.EndsAt,
		Active:        params.Active,
	}
	if params.MinOrderCents != nil {
		repoParams.MinOrderCents = pgtype.Int4{Int32: *params.MinOrderCents, Valid: true}
	}
	if params.MaxUsageCount != nil {
		repoParams.MaxUsageCount = pgtype.Int4{Int32: *params.MaxUsageCount, Valid: true}
	}

	if params.Code != "" {
		repoParams.Code = params.Code
		row, err := s.store.CreateCoupon(ctx, repoParams)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, domain.ErrCouponCodeTaken
			}
			return nil, domain.Internal(err, op, "failed to create coupon")
		}
		return couponFromRow(row), nil
	}

	for attempt := 0; attempt < codeGenerateAttempts; attempt++ {
		code, err := GenerateCouponCode(defaultCodeLength, params.CodePrefix)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to generate coupon code")
		}
		repoParams.Code = code

		row, err := s.store.CreateCoupon(ctx, repoParams)
		if err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, domain.Internal(err, op, "failed to create coupon")
		}
		return couponFromRow(row), nil
	}
	return nil, domain.Conflict(op, "could not generate a unique coupon code")
}

// GenerateCouponCode produces a random alphanumeric code. The alphabet skips
// easily confused characters (0/O, 1/I). Uniqueness is the caller's problem.
func GenerateCouponCode(length int, prefix string) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("code length must be at least 1, got %d", length)
	}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i := range b {
		b[i] = couponCodeAlphabet[int(b[i])%len(couponCodeAlphabet)]
	}
	return prefix + string(b), nil
}

// lookup loads a coupon by code.
func (s *couponService) lookup(ctx context.Context, op, code string) (repository.Coupon, error) {
	if code == "" {
		return repository.Coupon{}, domain.ErrCouponNotFound
	}
	coupon, err := s.store.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Coupon{}, domain.ErrCouponNotFound
		}
		return repository.Coupon{}, domain.Internal(err, op, "failed to load coupon")
	}
	return coupon, nil
}

// check applies the ordered business rules shared by both validation paths.
func (s *couponService) check(coupon repository.Coupon, orderAmountCents int32) error {
	if !coupon.Active {
		return domain.ErrCouponInactive
	}
	now := s.now()
	if coupon.StartsAt.Valid && now.Before(coupon.StartsAt.Time) {
		return domain.ErrCouponNotStarted
	}
	if coupon.EndsAt.Valid && now.After(coupon.EndsAt.Time) {
		return domain.ErrCouponExpired
	}
	if coupon.MinOrderCents.Valid && orderAmountCents < coupon.MinOrderCents.Int32 {
		return domain.ErrCouponBelowMinimum
	}
	return nil
}

func (s *couponService) accepted(coupon repository.Coupon, orderAmountCents int32) *domain.CouponValidation {
	return &domain.CouponValidation{
		Valid:         true,
		Message:       "Coupon applied",
		DiscountCents: discountFor(coupon, orderAmountCents),
		Coupon:        couponFromRow(coupon),
	}
}

// discountFor computes the discount, clamped so it can never exceed the order
// amount.
func discountFor(coupon repository.Coupon, orderAmountCents int32) int32 {
	var discount int32
	switch coupon.DiscountType {
	case domain.DiscountPercentage:
		discount = int32(int64(orderAmountCents) * int64(coupon.DiscountValue) / 100)
	case domain.DiscountFixedAmount:
		discount = coupon.DiscountValue
	}
	if discount > orderAmountCents {
		discount = orderAmountCents
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

func rejected(err error) *domain.CouponValidation {
	return &domain.CouponValidation{
		Valid:   false,
		Message: domain.ErrorMessage(err),
	}
}

func couponFromRow(row repository.Coupon) *domain.Coupon {
	return &domain.Coupon{
		ID:            row.ID,
		Code:          row.Code,
		DiscountType:  row.DiscountType,
		DiscountValue: row.DiscountValue,
		MinOrderCents: row.MinOrderCents,
		StartsAt:      row.StartsAt,
		EndsAt:        row.EndsAt,
		Active:        row.Active,
		MaxUsageCount: row.MaxUsageCount,
		UsageCount:    row.UsageCount,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
