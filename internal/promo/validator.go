// Package promo validates discount codes against a purchase kind and amount.
// Validation is read-only: redemption counts are only incremented once the
// processor confirms a payment, so lookups never consume allowance.
package promo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lumenlearn/ce-platform/internal/domain"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

type Validator struct {
	promos domain.PromoRepository
	now    func() time.Time
}

func NewValidator(promos domain.PromoRepository) *Validator {
	return &Validator{
		promos: promos,
		now:    time.Now,
	}
}

// Validate checks existence, validity window, kind applicability, and usage
// cap, then computes the discount. Policy rejections come back as
// *domain.PromoError; anything else is a system failure.
func (v *Validator) Validate(
	ctx context.Context,
	code string,
	kind domain.PurchaseKind,
	amount decimal.Decimal) (*domain.PromoResult, error) {

	normalized := strings.ToUpper(strings.TrimSpace(code))

	promoCode, err := v.promos.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, &domain.PromoError{Reason: domain.PromoNotFound}
		}

		return nil, err
	}

	now := v.now()
	if now.Before(promoCode.ValidFrom) {
		return nil, &domain.PromoError{Reason: domain.PromoExpired}
	}
	if promoCode.ValidUntil != nil && now.After(*promoCode.ValidUntil) {
		return nil, &domain.PromoError{Reason: domain.PromoExpired}
	}

	if !promoCode.AppliesToKind(kind) {
		return nil, &domain.PromoError{Reason: domain.PromoNotApplicable}
	}

	if promoCode.MaxRedemptions != nil && promoCode.RedemptionCount >= *promoCode.MaxRedemptions {
		return nil, &domain.PromoError{Reason: domain.PromoUsageExceeded}
	}

	result := domain.PromoResult{
		NormalizedCode: normalized,
		DiscountType:   promoCode.DiscountType,
	}

	switch promoCode.DiscountType {
	case domain.DiscountTypePercent:
		result.DiscountPercent = promoCode.DiscountValue
		result.DiscountAmount = amount.Mul(promoCode.DiscountValue).Div(oneHundred).Round(2)
	case domain.DiscountTypeFixed:
		// A fixed discount never produces a negative final price.
		result.DiscountAmount = decimal.Min(promoCode.DiscountValue, amount)
	}

	result.FinalAmount = amount.Sub(result.DiscountAmount)
	if result.FinalAmount.IsNegative() {
		result.FinalAmount = decimal.Zero
	}

	return &result, nil
}
