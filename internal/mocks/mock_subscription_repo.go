package mocks

import (
	"context"
	"time"

	"github.com/lumenlearn/ce-platform/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSubscriptionRepo struct {
	mock.Mock
	domain.SubscriptionRepository
}

func (m *MockSubscriptionRepo) Upsert(ctx context.Context, subscription *domain.Subscription) error {
	args := m.Called(ctx, subscription)
	return args.Error(0)
}

func (m *MockSubscriptionRepo) GetActiveByUser(ctx context.Context, userID int) (*domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepo) UpdateByProviderId(
	ctx context.Context,
	providerSubscriptionID string,
	status domain.SubscriptionStatus,
	periodStart, periodEnd time.Time) error {

	args := m.Called(ctx, providerSubscriptionID, status, periodStart, periodEnd)
	return args.Error(0)
}
