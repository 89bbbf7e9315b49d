package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusExpired   EnrollmentStatus = "expired"
	EnrollmentStatusRevoked   EnrollmentStatus = "revoked"
)

type Enrollment struct {
	ID                int
	UserID            int
	CourseID          int
	PaymentID         *int
	Status            EnrollmentStatus
	Progress          decimal.Decimal
	EnrolledAt        time.Time
	ExpiresAt         *time.Time
	GracePeriodEndsAt *time.Time
}

// EffectiveStatus derives the access-relevant status from timestamps rather
// than the stored enum, so a lagging batch status-update job cannot keep a
// stale enrollment accessible past its grace period.
func (e Enrollment) EffectiveStatus(now time.Time) EnrollmentStatus {
	if e.Status == EnrollmentStatusRevoked {
		return EnrollmentStatusRevoked
	}

	if e.ExpiresAt != nil && now.After(*e.ExpiresAt) {
		if e.GracePeriodEndsAt != nil && now.Before(*e.GracePeriodEndsAt) {
			return e.Status
		}

		return EnrollmentStatusExpired
	}

	return e.Status
}

// Accessible reports whether the enrollment grants course access at the given
// instant, honoring the grace window after nominal expiration.
func (e Enrollment) Accessible(now time.Time) bool {
	switch e.EffectiveStatus(now) {
	case EnrollmentStatusActive, EnrollmentStatusCompleted:
		return true
	}

	return false
}

type EnrollmentSummary struct {
	EnrollmentID int
	CourseID     int
	CourseTitle  string
	CourseSlug   string
	CEHours      decimal.Decimal
	Status       EnrollmentStatus
	Progress     decimal.Decimal
	EnrolledAt   time.Time
	ExpiresAt    *time.Time
}

type EnrollmentRepository interface {
	// Create returns ErrAlreadyEnrolled when the (user, course) pair already
	// has an enrollment row.
	Create(ctx context.Context, enrollment *Enrollment) error
	GetByUserAndCourse(ctx context.Context, userID, courseID int) (*Enrollment, error)
	GetAllByUser(ctx context.Context, userID int) ([]Enrollment, error)
	GetSummariesByUser(ctx context.Context, userID int, statuses []EnrollmentStatus, pagination Pagination) ([]EnrollmentSummary, *Metadata, error)
}
