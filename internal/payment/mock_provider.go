package payment

import (
	"github.com/lumenlearn/ce-platform/internal/domain"
	"github.com/stripe/stripe-go/v82"
)

// MockPaymentProvider is a configurable stand-in for Stripe used by the
// integration suite. Tests set CheckoutSession, Subscription or Err before
// issuing requests and inspect LastIntent afterwards.
type MockPaymentProvider struct {
	CheckoutSession *stripe.CheckoutSession
	Subscription    *stripe.Subscription
	Err             error

	LastIntent domain.PurchaseIntent
	LastItems  []domain.CheckoutItem
}

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{}
}

func (m *MockPaymentProvider) CreateCheckoutSession(
	user *domain.User,
	intent domain.PurchaseIntent,
	items []domain.CheckoutItem) (*stripe.CheckoutSession, error) {

	m.LastIntent = intent
	m.LastItems = items

	if m.Err != nil {
		return nil, m.Err
	}

	return m.CheckoutSession, nil
}

func (m *MockPaymentProvider) GetSubscription(subscriptionID string) (*stripe.Subscription, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	return m.Subscription, nil
}

func (m *MockPaymentProvider) GetCheckoutSessionByPaymentIntent(paymentIntentID string) (*stripe.CheckoutSession, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	if m.CheckoutSession == nil {
		return nil, domain.ErrRecordNotFound
	}

	return m.CheckoutSession, nil
}
