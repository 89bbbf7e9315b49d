// Package enrollment answers access questions by combining enrollment rows,
// membership entitlements, and expiration/grace-period rules.
package enrollment

import (
	"context"
	"errors"
	"time"

	"github.com/lumenlearn/ce-platform/internal/domain"
)

type Service struct {
	enrollments   domain.EnrollmentRepository
	subscriptions domain.SubscriptionRepository
	catalog       domain.CatalogRepository
	now           func() time.Time
}

func NewService(
	enrollments domain.EnrollmentRepository,
	subscriptions domain.SubscriptionRepository,
	catalog domain.CatalogRepository) *Service {

	return &Service{
		enrollments:   enrollments,
		subscriptions: subscriptions,
		catalog:       catalog,
		now:           time.Now,
	}
}

// HasAccess checks the direct enrollment first because it is the cheaper
// query; the membership path is only consulted when no enrollment exists.
func (s *Service) HasAccess(ctx context.Context, userID, courseID int) (bool, error) {
	enrollment, err := s.enrollments.GetByUserAndCourse(ctx, userID, courseID)
	if err == nil {
		if enrollment.Accessible(s.now()) {
			return true, nil
		}
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		return false, err
	}

	sub, err := s.subscriptions.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return false, nil
		}

		return false, err
	}

	if !sub.Entitled(s.now()) {
		return false, nil
	}

	tier, err := s.catalog.GetTier(ctx, sub.Tier)
	if err != nil {
		// Program payment plans land in the subscriptions table too; they
		// don't entitle the holder to arbitrary courses.
		if errors.Is(err, domain.ErrRecordNotFound) {
			return false, nil
		}

		return false, err
	}

	return tier.IncludesAllCourses, nil
}

// GetStatus returns the effective status of a single enrollment.
func (s *Service) GetStatus(ctx context.Context, userID, courseID int) (*domain.Enrollment, error) {
	enrollment, err := s.enrollments.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	enrollment.Status = enrollment.EffectiveStatus(s.now())

	return enrollment, nil
}

// GetAllStatuses returns every enrollment of the user with effective statuses.
func (s *Service) GetAllStatuses(ctx context.Context, userID int) ([]domain.Enrollment, error) {
	enrollments, err := s.enrollments.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range enrollments {
		enrollments[i].Status = enrollments[i].EffectiveStatus(now)
	}

	return enrollments, nil
}

// ActiveEnrollments is the paginated projection of accessible enrollments.
func (s *Service) ActiveEnrollments(ctx context.Context, userID int, pagination domain.Pagination) ([]domain.EnrollmentSummary, *domain.Metadata, error) {
	statuses := []domain.EnrollmentStatus{
		domain.EnrollmentStatusActive,
		domain.EnrollmentStatusCompleted,
	}

	return s.enrollments.GetSummariesByUser(ctx, userID, statuses, pagination)
}

// History lists enrollments newest-first; includeExpired unions expired and
// revoked rows into the result.
func (s *Service) History(ctx context.Context, userID int, includeExpired bool, pagination domain.Pagination) ([]domain.EnrollmentSummary, *domain.Metadata, error) {
	statuses := []domain.EnrollmentStatus{
		domain.EnrollmentStatusActive,
		domain.EnrollmentStatusCompleted,
	}

	if includeExpired {
		statuses = append(statuses, domain.EnrollmentStatusExpired, domain.EnrollmentStatusRevoked)
	}

	return s.enrollments.GetSummariesByUser(ctx, userID, statuses, pagination)
}
