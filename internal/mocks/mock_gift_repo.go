package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lumenlearn/ce-platform/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockGiftRepo struct {
	mock.Mock
	domain.GiftRepository
}

func (m *MockGiftRepo) Create(ctx context.Context, gift *domain.Gift) error {
	args := m.Called(ctx, gift)
	return args.Error(0)
}

func (m *MockGiftRepo) MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) error {
	args := m.Called(ctx, id, deliveredAt)
	return args.Error(0)
}

func (m *MockGiftRepo) GetUndelivered(ctx context.Context, dueBy time.Time) ([]domain.Gift, error) {
	args := m.Called(ctx, dueBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Gift), args.Error(1)
}
