package mocks

import (
	"context"

	"github.com/lumenlearn/ce-platform/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockCatalogRepo struct {
	mock.Mock
	domain.CatalogRepository
}

func (m *MockCatalogRepo) GetCourseById(ctx context.Context, id int) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockCatalogRepo) GetTier(ctx context.Context, tier string) (*domain.MembershipTier, error) {
	args := m.Called(ctx, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MembershipTier), args.Error(1)
}

func (m *MockCatalogRepo) GetProgram(ctx context.Context, program string) (*domain.Program, error) {
	args := m.Called(ctx, program)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Program), args.Error(1)
}

func (m *MockCatalogRepo) ListCourses(ctx context.Context, publishedOnly bool) ([]domain.Course, error) {
	args := m.Called(ctx, publishedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Course), args.Error(1)
}

func (m *MockCatalogRepo) ListTiers(ctx context.Context) ([]domain.MembershipTier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MembershipTier), args.Error(1)
}

func (m *MockCatalogRepo) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Program), args.Error(1)
}
