package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

type PromoRejectionReason string

const (
	PromoNotFound      PromoRejectionReason = "not-found"
	PromoExpired       PromoRejectionReason = "expired"
	PromoNotApplicable PromoRejectionReason = "not-applicable"
	PromoUsageExceeded PromoRejectionReason = "usage-exceeded"
)

// PromoError is a policy rejection, not a system failure. Callers surface the
// reason verbatim to the client.
type PromoError struct {
	Reason PromoRejectionReason
}

func (e *PromoError) Error() string {
	return "promo code rejected: " + string(e.Reason)
}

type PromoCode struct {
	ID              int
	Code            string
	DiscountType    DiscountType
	DiscountValue   decimal.Decimal
	AppliesTo       []PurchaseKind
	ValidFrom       time.Time
	ValidUntil      *time.Time
	MaxRedemptions  *int
	RedemptionCount int
	CreatedAt       time.Time
}

func (p PromoCode) AppliesToKind(kind PurchaseKind) bool {
	if len(p.AppliesTo) == 0 {
		return true
	}

	for _, k := range p.AppliesTo {
		if k == kind {
			return true
		}
	}

	return false
}

// PromoResult is the outcome of a successful validation. DiscountAmount is
// always in major currency units, rounded to two places, and never exceeds the
// amount it was validated against.
type PromoResult struct {
	NormalizedCode  string
	DiscountType    DiscountType
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	FinalAmount     decimal.Decimal
}

type PromoRepository interface {
	GetByCode(ctx context.Context, code string) (*PromoCode, error)

	// IncrementRedemptions relies on the database's atomic update; it is only
	// called after a confirmed payment, never during validation.
	IncrementRedemptions(ctx context.Context, code string) error
}
