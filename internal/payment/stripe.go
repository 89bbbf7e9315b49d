package payment

import (
	"github.com/lumenlearn/ce-platform/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/subscription"
)

type StripePaymentProvider struct {
	successUrl string
	cancelUrl  string
}

func NewStripePaymentProvider(successUrl, cancelUrl string) *StripePaymentProvider {
	return &StripePaymentProvider{
		successUrl: successUrl,
		cancelUrl:  cancelUrl,
	}
}

func (s *StripePaymentProvider) CreateCheckoutSession(
	user *domain.User,
	intent domain.PurchaseIntent,
	items []domain.CheckoutItem) (*stripe.CheckoutSession, error) {

	var lineItems []*stripe.CheckoutSessionLineItemParams
	recurring := false

	for _, item := range items {
		priceCents := item.UnitAmount.Mul(decimal.NewFromInt(100)).IntPart()

		priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(string(stripe.CurrencyUSD)),
			UnitAmount: stripe.Int64(priceCents),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(item.Name),
			},
		}

		if item.Description != "" {
			priceData.ProductData.Description = stripe.String(item.Description)
		}

		if item.Recurring {
			recurring = true
			priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
				Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
			}
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: priceData,
			Quantity:  stripe.Int64(1),
		})
	}

	mode := stripe.CheckoutSessionModePayment
	if recurring {
		mode = stripe.CheckoutSessionModeSubscription
	}

	params := &stripe.CheckoutSessionParams{
		LineItems:         lineItems,
		Mode:              stripe.String(string(mode)),
		SuccessURL:        stripe.String(s.successUrl),
		CancelURL:         stripe.String(s.cancelUrl),
		Metadata:          intent.ToMetadata(),
		CustomerEmail:     &user.Email,
		ClientReferenceID: stripe.String(intent.ProductRef()),
	}

	if recurring {
		// Metadata on the session alone is lost on subsequent subscription
		// lifecycle events, so mirror it onto the subscription itself.
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: intent.ToMetadata(),
		}
	}

	return session.New(params)
}

func (s *StripePaymentProvider) GetSubscription(subscriptionID string) (*stripe.Subscription, error) {
	return subscription.Get(subscriptionID, nil)
}

// GetCheckoutSessionByPaymentIntent maps charge-level events, which only
// carry a payment intent, back to the checkout session our payment rows are
// keyed on.
func (s *StripePaymentProvider) GetCheckoutSessionByPaymentIntent(paymentIntentID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionListParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Limit = stripe.Int64(1)

	iter := session.List(params)
	for iter.Next() {
		return iter.CheckoutSession(), nil
	}

	if err := iter.Err(); err != nil {
		return nil, err
	}

	return nil, domain.ErrRecordNotFound
}
