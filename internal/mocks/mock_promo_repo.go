package mocks

import (
	"context"

	"github.com/lumenlearn/ce-platform/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPromoRepo struct {
	mock.Mock
	domain.PromoRepository
}

func (m *MockPromoRepo) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PromoCode), args.Error(1)
}

func (m *MockPromoRepo) IncrementRedemptions(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}
