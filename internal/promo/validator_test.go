package promo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumenlearn/ce-platform/internal/domain"
	"github.com/lumenlearn/ce-platform/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func newTestValidator(promos domain.PromoRepository) *Validator {
	v := NewValidator(promos)
	v.now = func() time.Time { return testNow }

	return v
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		kind       domain.PurchaseKind
		amount     string
		promo      *domain.PromoCode
		repoErr    error
		wantReason domain.PromoRejectionReason
		wantResult *domain.PromoResult
	}{
		{
			name:   "percent discount is computed on the amount and rounded",
			code:   "SAVE10",
			kind:   domain.PurchaseKindCourse,
			amount: "100.00",
			promo: &domain.PromoCode{
				Code:          "SAVE10",
				DiscountType:  domain.DiscountTypePercent,
				DiscountValue: decimal.NewFromInt(10),
				ValidFrom:     testNow.Add(-24 * time.Hour),
			},
			wantResult: &domain.PromoResult{
				NormalizedCode:  "SAVE10",
				DiscountType:    domain.DiscountTypePercent,
				DiscountPercent: decimal.NewFromInt(10),
				DiscountAmount:  decimal.RequireFromString("10.00"),
				FinalAmount:     decimal.RequireFromString("90.00"),
			},
		},
		{
			name:   "percent discount rounds half-up to two places",
			code:   "SAVE15",
			kind:   domain.PurchaseKindCourse,
			amount: "33.33",
			promo: &domain.PromoCode{
				Code:          "SAVE15",
				DiscountType:  domain.DiscountTypePercent,
				DiscountValue: decimal.NewFromInt(15),
				ValidFrom:     testNow.Add(-24 * time.Hour),
			},
			wantResult: &domain.PromoResult{
				NormalizedCode:  "SAVE15",
				DiscountType:    domain.DiscountTypePercent,
				DiscountPercent: decimal.NewFromInt(15),
				DiscountAmount:  decimal.RequireFromString("5.00"),
				FinalAmount:     decimal.RequireFromString("28.33"),
			},
		},
		{
			name:   "fixed discount never drives the final amount below zero",
			code:   "TAKE50",
			kind:   domain.PurchaseKindCourse,
			amount: "30.00",
			promo: &domain.PromoCode{
				Code:          "TAKE50",
				DiscountType:  domain.DiscountTypeFixed,
				DiscountValue: decimal.NewFromInt(50),
				ValidFrom:     testNow.Add(-24 * time.Hour),
			},
			wantResult: &domain.PromoResult{
				NormalizedCode: "TAKE50",
				DiscountType:   domain.DiscountTypeFixed,
				DiscountAmount: decimal.RequireFromString("30.00"),
				FinalAmount:    decimal.Zero,
			},
		},
		{
			name:       "unknown code is rejected as not-found",
			code:       "NOPE",
			kind:       domain.PurchaseKindCourse,
			amount:     "100.00",
			repoErr:    domain.ErrRecordNotFound,
			wantReason: domain.PromoNotFound,
		},
		{
			name:   "code outside its validity window is rejected as expired",
			code:   "SAVE10",
			kind:   domain.PurchaseKindCourse,
			amount: "100.00",
			promo: &domain.PromoCode{
				Code:          "SAVE10",
				DiscountType:  domain.DiscountTypePercent,
				DiscountValue: decimal.NewFromInt(10),
				ValidFrom:     testNow.Add(-48 * time.Hour),
				ValidUntil:    timePtr(testNow.Add(-time.Hour)),
			},
			wantReason: domain.PromoExpired,
		},
		{
			name:   "code that is not yet valid is rejected as expired",
			code:   "SAVE10",
			kind:   domain.PurchaseKindCourse,
			amount: "100.00",
			promo: &domain.PromoCode{
				Code:          "SAVE10",
				DiscountType:  domain.DiscountTypePercent,
				DiscountValue: decimal.NewFromInt(10),
				ValidFrom:     testNow.Add(time.Hour),
			},
			wantReason: domain.PromoExpired,
		},
		{
			name:   "code restricted to another purchase kind is rejected",
			code:   "MEMBERS",
			kind:   domain.PurchaseKindCourse,
			amount: "100.00",
			promo: &domain.PromoCode{
				Code:          "MEMBERS",
				DiscountType:  domain.DiscountTypePercent,
				DiscountValue: decimal.NewFromInt(10),
				AppliesTo:     []domain.PurchaseKind{domain.PurchaseKindMembership},
				ValidFrom:     testNow.Add(-24 * time.Hour),
			},
			wantReason: domain.PromoNotApplicable,
		},
		{
			name:   "code at its redemption cap is rejected",
			code:   "SAVE10",
			kind:   domain.PurchaseKindCourse,
			amount: "100.00",
			promo: &domain.PromoCode{
				Code:            "SAVE10",
				DiscountType:    domain.DiscountTypePercent,
				DiscountValue:   decimal.NewFromInt(10),
				ValidFrom:       testNow.Add(-24 * time.Hour),
				MaxRedemptions:  intPtr(100),
				RedemptionCount: 100,
			},
			wantReason: domain.PromoUsageExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promoRepo := new(mocks.MockPromoRepo)
			promoRepo.On("GetByCode", mock.Anything, mock.Anything).Return(tt.promo, tt.repoErr)

			v := newTestValidator(promoRepo)

			result, err := v.Validate(context.Background(), tt.code, tt.kind, decimal.RequireFromString(tt.amount))

			if tt.wantReason != "" {
				var promoErr *domain.PromoError
				require.ErrorAs(t, err, &promoErr)
				assert.Equal(t, tt.wantReason, promoErr.Reason)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantResult.NormalizedCode, result.NormalizedCode)
			assert.Equal(t, tt.wantResult.DiscountType, result.DiscountType)
			assert.True(t, tt.wantResult.DiscountPercent.Equal(result.DiscountPercent),
				"discount percent = %s, want %s", result.DiscountPercent, tt.wantResult.DiscountPercent)
			assert.True(t, tt.wantResult.DiscountAmount.Equal(result.DiscountAmount),
				"discount amount = %s, want %s", result.DiscountAmount, tt.wantResult.DiscountAmount)
			assert.True(t, tt.wantResult.FinalAmount.Equal(result.FinalAmount),
				"final amount = %s, want %s", result.FinalAmount, tt.wantResult.FinalAmount)
		})
	}
}

func TestValidateNormalizesCode(t *testing.T) {
	promoRepo := new(mocks.MockPromoRepo)
	promoRepo.On("GetByCode", mock.Anything, "SAVE10").
		Return(&domain.PromoCode{
			Code:          "SAVE10",
			DiscountType:  domain.DiscountTypePercent,
			DiscountValue: decimal.NewFromInt(10),
			ValidFrom:     testNow.Add(-24 * time.Hour),
		}, nil).
		Once()

	v := newTestValidator(promoRepo)

	result, err := v.Validate(context.Background(), "  save10 ", domain.PurchaseKindCourse, decimal.NewFromInt(100))

	require.NoError(t, err)
	assert.Equal(t, "SAVE10", result.NormalizedCode)
	promoRepo.AssertExpectations(t)
}

func TestValidateRepositoryFailure(t *testing.T) {
	promoRepo := new(mocks.MockPromoRepo)
	promoRepo.On("GetByCode", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	v := newTestValidator(promoRepo)

	result, err := v.Validate(context.Background(), "SAVE10", domain.PurchaseKindCourse, decimal.NewFromInt(100))

	require.Error(t, err)
	assert.Nil(t, result)

	var promoErr *domain.PromoError
	assert.False(t, errors.As(err, &promoErr), "system failures must not surface as policy rejections")
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func intPtr(i int) *int {
	return &i
}
