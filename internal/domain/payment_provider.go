package domain

import (
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

// CheckoutItem is one line of a checkout session, priced in major currency
// units.
type CheckoutItem struct {
	Name        string
	Description string
	UnitAmount  decimal.Decimal
	Recurring   bool
}

type PaymentProvider interface {
	CreateCheckoutSession(user *User, intent PurchaseIntent, items []CheckoutItem) (*stripe.CheckoutSession, error)
	GetSubscription(subscriptionID string) (*stripe.Subscription, error)

	// GetCheckoutSessionByPaymentIntent returns ErrRecordNotFound when the
	// payment intent was never part of a checkout session.
	GetCheckoutSessionByPaymentIntent(paymentIntentID string) (*stripe.CheckoutSession, error)
}
