package mocks

import (
	"context"

	"github.com/lumenlearn/ce-platform/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockEnrollmentRepo struct {
	mock.Mock
	domain.EnrollmentRepository
}

func (m *MockEnrollmentRepo) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *MockEnrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID int) (*domain.Enrollment, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) GetAllByUser(ctx context.Context, userID int) ([]domain.Enrollment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) GetSummariesByUser(
	ctx context.Context,
	userID int,
	statuses []domain.EnrollmentStatus,
	pagination domain.Pagination) ([]domain.EnrollmentSummary, *domain.Metadata, error) {

	args := m.Called(ctx, userID, statuses, pagination)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.EnrollmentSummary), args.Get(1).(*domain.Metadata), args.Error(2)
}
