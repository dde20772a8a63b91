package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunelark/storefront/internal/domain"
	"github.com/dunelark/storefront/internal/repository"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func uniqueViolationErr() error {
	return &pgconn.PgError{Code: "23505"}
}

func TestCouponValidate_Checks(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		coupon  repository.Coupon
		amount  int32
		wantErr error
	}{
		{
			name:    "inactive",
			coupon:  repository.Coupon{Code: "SAVE10", Active: false},
			amount:  1000,
			wantErr: domain.ErrCouponInactive,
		},
		{
			name: "not started",
			coupon: repository.Coupon{Code: "SAVE10", Active: true,
				StartsAt: pgtype.Timestamptz{Time: now.Add(24 * time.Hour), Valid: true}},
			amount:  1000,
			wantErr: domain.ErrCouponNotStarted,
		},
		{
			name: "expired",
			coupon: repository.Coupon{Code: "SAVE10", Active: true,
				EndsAt: pgtype.Timestamptz{Time: now.Add(-24 * time.Hour), Valid: true}},
			amount:  1000,
			wantErr: domain.ErrCouponExpired,
		},
		{
			name: "below minimum",
			coupon: repository.Coupon{Code: "SAVE10", Active: true,
				MinOrderCents: pgtype.Int4{Int32: 2000, Valid: true}},
			amount:  1999,
			wantErr: domain.ErrCouponBelowMinimum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockStore{
				GetCouponByCodeFunc: func(_ context.Context, _ string) (repository.Coupon, error) {
					return tt.coupon, nil
				},
			}
			svc := &couponService{store: m, now: fixedClock(now)}

			validation, err := svc.Validate(context.Background(), "SAVE10", tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)
			require.NotNil(t, validation)
			assert.False(t, validation.Valid)
			assert.NotEmpty(t, validation.Message)
		})
	}
}

func TestCouponValidate_UnknownCode(t *testing.T) {
	svc := &couponService{store: &mockStore{}, now: time.Now}

	_, err := svc.Validate(context.Background(), "NOPE", 1000)
	assert.ErrorIs(t, err, domain.ErrCouponNotFound)
}

func TestCouponValidate_PercentageDiscount(t *testing.T) {
	m := &mockStore{
		GetCouponByCodeFunc: func(_ context.Context, _ string) (repository.Coupon, error) {
			return repository.Coupon{ID: newUUID(), Code: "QUARTER", Active: true,
				DiscountType: domain.DiscountPercentage, DiscountValue: 25}, nil
		},
	}
	svc := &couponService{store: m, now: time.Now}

	validation, err := svc.Validate(context.Background(), "QUARTER", 1000)
	require.NoError(t, err)
	assert.True(t, validation.Valid)
	assert.Equal(t, int32(250), validation.DiscountCents)
}

func TestCouponValidate_FixedDiscountClampedToOrder(t *testing.T) {
	m := &mockStore{
		GetCouponByCodeFunc: func(_ context.Context, _ string) (repository.Coupon, error) {
			return repository.Coupon{ID: newUUID(), Code: "BIGOFF", Active: true,
				DiscountType: domain.DiscountFixedAmount, DiscountValue: 5000}, nil
		},
	}
	svc := &couponService{store: m, now: time.Now}

	validation, err := svc.Validate(context.Background(), "BIGOFF", 1200)
	require.NoError(t, err)
	assert.Equal(t, int32(1200), validation.DiscountCents, "discount can never exceed the order amount")
}

func TestCouponValidateForUser_TargetedGate(t *testing.T) {
	userID := newUUID()
	coupon := repository.Coupon{ID: newUUID(), Code: "VIP20", Active: true,
		DiscountType: domain.DiscountFixedAmount, DiscountValue: 2000}

	t.Run("not assigned", func(t *testing.T) {
		m := &mockStore{
			GetCouponByCodeFunc: func(_ context.Context, _ string) (repository.Coupon, error) {
				return coupon, nil
			},
			CouponHasAssignmentsFunc: func(_ context.Context, _ pgtype.UUID) (bool, error) {
				return true, nil
			},
		}
		svc := &couponService{store: m, now: time.Now}

		_, err := svc.ValidateForUser(context.Background(), userID, "VIP20", 5000)
		assert.ErrorIs(t, err, domain.ErrCouponNotAssigned)
	})

	t.Run("assigned and unused", func(t *testing.T) {
		m := &mockStore{
			GetCouponByCodeFunc: func(_ context.Context, _ string) (repository.Coupon, error) {
				return coupon, nil
			},
			CouponHasAssignmentsFunc: func(_ context.Context, _ pgtype.UUID) (bool, error) {
				return true, nil
			},
			GetUserCouponFunc: func(_ context.Context, _ repository.GetUserCouponParams) (repository.UserCoupon, error) {
				return repository.UserCoupon{UserID: userID, CouponID: coupon.ID, Used: false}, nil
			},
		}
		svc := &couponService{store: m, now: time.Now}

		validation, err := svc.ValidateForUser(context.Background(), userID, "VIP20", 5000)
		require.NoError(t, err)
		assert.True(t, validation.Valid)
		assert.Equal(t, int32(2000), validation.DiscountCents)
	})

	t.Run("already used", func(t *testing.T) {
		m := &mockStore{
			GetCouponByCodeFunc: func(_ context.Context, _ string) (repository.Coupon, error) {
				return coupon, nil
			},
			CouponHasAssignmentsFunc: func(_ context.Context, _ pgtype.UUID) (bool, error) {
				return true, nil
			},
			GetUserCouponFunc: func(_ context.Context, _ repository.GetUserCouponParams) (repository.UserCoupon, error) {
				return repository.UserCoupon{UserID: userID, CouponID: coupon.ID, Used: true}, nil
			},
		}
		svc := &couponService{store: m, now: time.Now}

		_, err := svc.ValidateForUser(context.Background(), userID, "VIP20", 5000)
		assert.ErrorIs(t, err, domain.ErrCouponAlreadyUsed)
	})

	t.Run("public coupon skips the gate", func(t *testing.T) {
		m := &mockStore{
			GetCouponByCodeFunc: func(_ context.Context, _ string) (repository.Coupon, error) {
				return coupon, nil
			},
		}
		svc := &couponService{store: m, now: time.Now}

		validation, err := svc.ValidateForUser(context.Background(), userID, "VIP20", 5000)
		require.NoError(t, err)
		assert.True(t, validation.Valid)
	})
}

func TestCouponMarkUsed_UsageLimitRace(t *testing.T) {
	// The conditional increment returning zero rows means a concurrent
	// redemption consumed the last usage slot.
	m := &mockStore{
		IncrementCouponUsageFunc: func(_ context.Context, _ pgtype.UUID) (int64, error) {
			return 0, nil
		},
	}
	svc := NewCouponService(m)

	err := svc.MarkUsed(context.Background(), newUUID(), newUUID(), newUUID())
	assert.ErrorIs(t, err, domain.ErrCouponUsageExceeded)
}

func TestCouponMarkUsed_PublicCouponHasNoLedgerRow(t *testing.T) {
	ledgerFlipped := false
	m := &mockStore{
		GetUserCouponFunc: func(_ context.Context, _ repository.GetUserCouponParams) (repository.UserCoupon, error) {
			return repository.UserCoupon{}, pgx.ErrNoRows
		},
		MarkUserCouponUsedFunc: func(_ context.Context, _ repository.MarkUserCouponUsedParams) (int64, error) {
			ledgerFlipped = true
			return 1, nil
		},
	}
	svc := NewCouponService(m)

	err := svc.MarkUsed(context.Background(), newUUID(), newUUID(), newUUID())
	require.NoError(t, err)
	assert.False(t, ledgerFlipped)
}

func TestCouponMarkUsed_LedgerRace(t *testing.T) {
	m := &mockStore{
		GetUserCouponFunc: func(_ context.Context, arg repository.GetUserCouponParams) (repository.UserCoupon, error) {
			return repository.UserCoupon{UserID: arg.UserID, CouponID: arg.CouponID}, nil
		},
		MarkUserCouponUsedFunc: func(_ context.Context, _ repository.MarkUserCouponUsedParams) (int64, error) {
			// Another transaction flipped the row first.
			return 0, nil
		},
	}
	svc := NewCouponService(m)

	err := svc.MarkUsed(context.Background(), newUUID(), newUUID(), newUUID())
	assert.ErrorIs(t, err, domain.ErrCouponAlreadyUsed)
}

func TestCouponAssignToUser_Duplicate(t *testing.T) {
	m := &mockStore{
		GetCouponByIDFunc: func(_ context.Context, id pgtype.UUID) (repository.Coupon, error) {
			return repository.Coupon{ID: id, Code: "VIP20"}, nil
		},
		CreateUserCouponFunc: func(_ context.Context, _ repository.CreateUserCouponParams) (repository.UserCoupon, error) {
			return repository.UserCoupon{}, uniqueViolationErr()
		},
	}
	svc := NewCouponService(m)

	err := svc.AssignToUser(context.Background(), newUUID(), newUUID())
	assert.ErrorIs(t, err, domain.ErrCouponAlreadyAssigned)
}

func TestCouponCreate_ExplicitCodeTaken(t *testing.T) {
	m := &mockStore{
		CreateCouponFunc: func(_ context.Context, _ repository.CreateCouponParams) (repository.Coupon, error) {
			return repository.Coupon{}, uniqueViolationErr()
		},
	}
	svc := NewCouponService(m)

	_, err := svc.CreateCoupon(context.Background(), domain.CreateCouponParams{
		Code:          "SUMMER",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		Active:        true,
	})
	assert.ErrorIs(t, err, domain.ErrCouponCodeTaken)
}

func TestCouponCreate_WithoutValidityWindow(t *testing.T) {
	var captured repository.CreateCouponParams
	m := &mockStore{
		CreateCouponFunc: func(_ context.Context, arg repository.CreateCouponParams) (repository.Coupon, error) {
			captured = arg
			return repository.Coupon{ID: newUUID(), Code: arg.Code, DiscountType: arg.DiscountType,
				DiscountValue: arg.DiscountValue, Active: arg.Active}, nil
		},
	}
	svc := NewCouponService(m)

	coupon, err := svc.CreateCoupon(context.Background(), domain.CreateCouponParams{
		Code:          "EVERGREEN",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		Active:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, "EVERGREEN", coupon.Code)
	assert.False(t, captured.StartsAt.Valid, "an open-ended coupon stores a NULL starts_at")
	assert.False(t, captured.EndsAt.Valid, "an open-ended coupon stores a NULL ends_at")
}

func TestCouponCreate_GeneratedCodeRetriesOnCollision(t *testing.T) {
	calls := 0
	m := &mockStore{
		CreateCouponFunc: func(_ context.Context, arg repository.CreateCouponParams) (repository.Coupon, error) {
			calls++
			if calls == 1 {
				return repository.Coupon{}, uniqueViolationErr()
			}
			return repository.Coupon{ID: newUUID(), Code: arg.Code, DiscountType: arg.DiscountType,
				DiscountValue: arg.DiscountValue, Active: arg.Active}, nil
		},
	}
	svc := NewCouponService(m)

	coupon, err := svc.CreateCoupon(context.Background(), domain.CreateCouponParams{
		CodePrefix:    "SUMMER-",
		DiscountType:  domain.DiscountFixedAmount,
		DiscountValue: 500,
		Active:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, strings.HasPrefix(coupon.Code, "SUMMER-"))
}

func TestCouponCreate_RejectsBadParams(t *testing.T) {
	svc := NewCouponService(&mockStore{})

	_, err := svc.CreateCoupon(context.Background(), domain.CreateCouponParams{
		DiscountType: domain.DiscountPercentage, DiscountValue: 150,
	})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	_, err = svc.CreateCoupon(context.Background(), domain.CreateCouponParams{
		DiscountType: "bogus", DiscountValue: 10,
	})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.CreateCoupon(context.Background(), domain.CreateCouponParams{
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		StartsAt:      pgtype.Timestamptz{Time: start, Valid: true},
		EndsAt:        pgtype.Timestamptz{Time: start.Add(-time.Hour), Valid: true},
	})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestGenerateCouponCode(t *testing.T) {
	code, err := GenerateCouponCode(10, "WELCOME-")
	require.NoError(t, err)
	assert.Len(t, code, 18)
	assert.True(t, strings.HasPrefix(code, "WELCOME-"))

	for _, r := range strings.TrimPrefix(code, "WELCOME-") {
		assert.Contains(t, couponCodeAlphabet, string(r))
	}

	_, err = GenerateCouponCode(0, "")
	assert.Error(t, err)
}
