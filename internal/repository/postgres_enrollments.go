package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumenlearn/ce-platform/internal/domain"
)

type PostgresEnrollmentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresEnrollmentRepository(db *pgxpool.Pool) *PostgresEnrollmentRepository {
	return &PostgresEnrollmentRepository{
		db: db,
	}
}

func (p *PostgresEnrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	query := `
		INSERT INTO enrollments (
			user_id,
			course_id,
			payment_id,
			status,
			enrolled_at,
			expires_at,
			grace_period_ends_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := p.db.QueryRow(
		ctx,
		query,
		enrollment.UserID,
		enrollment.CourseID,
		enrollment.PaymentID,
		enrollment.Status,
		enrollment.EnrolledAt,
		enrollment.ExpiresAt,
		enrollment.GracePeriodEndsAt,
	).Scan(&enrollment.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrAlreadyEnrolled
		}

		return err
	}

	return nil
}

func (p *PostgresEnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID int) (*domain.Enrollment, error) {
	query := `
		SELECT id, user_id, course_id, payment_id, status, progress,
			enrolled_at, expires_at, grace_period_ends_at
		FROM enrollments
		WHERE user_id = $1 AND course_id = $2
	`

	var enrollment domain.Enrollment

	err := p.db.QueryRow(ctx, query, userID, courseID).Scan(
		&enrollment.ID,
		&enrollment.UserID,
		&enrollment.CourseID,
		&enrollment.PaymentID,
		&enrollment.Status,
		&enrollment.Progress,
		&enrollment.EnrolledAt,
		&enrollment.ExpiresAt,
		&enrollment.GracePeriodEndsAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &enrollment, nil
}

func (p *PostgresEnrollmentRepository) GetAllByUser(ctx context.Context, userID int) ([]domain.Enrollment, error) {
	query := `
		SELECT id, user_id, course_id, payment_id, status, progress,
			enrolled_at, expires_at, grace_period_ends_at
		FROM enrollments
		WHERE user_id = $1
		ORDER BY enrolled_at DESC
	`

	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]domain.Enrollment, 0)

	for rows.Next() {
		var enrollment domain.Enrollment

		err := rows.Scan(
			&enrollment.ID,
			&enrollment.UserID,
			&enrollment.CourseID,
			&enrollment.PaymentID,
			&enrollment.Status,
			&enrollment.Progress,
			&enrollment.EnrolledAt,
			&enrollment.ExpiresAt,
			&enrollment.GracePeriodEndsAt,
		)
		if err != nil {
			return nil, err
		}

		enrollments = append(enrollments, enrollment)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (p *PostgresEnrollmentRepository) GetSummariesByUser(
	ctx context.Context,
	userID int,
	statuses []domain.EnrollmentStatus,
	pagination domain.Pagination) ([]domain.EnrollmentSummary, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			e.id,
			e.course_id,
			c.title,
			c.slug,
			c.ce_hours,
			e.status,
			e.progress,
			e.enrolled_at,
			e.expires_at
		FROM enrollments e
		JOIN courses c ON e.course_id = c.id
		WHERE e.user_id = $1 AND e.status = ANY($2)
		ORDER BY e.enrolled_at DESC
		LIMIT $3 OFFSET $4
	`

	statusStrings := make([]string, len(statuses))
	for i, status := range statuses {
		statusStrings[i] = string(status)
	}

	rows, err := p.db.Query(ctx, query, userID, statusStrings, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	summaries := make([]domain.EnrollmentSummary, 0)
	totalRecords := 0

	for rows.Next() {
		var summary domain.EnrollmentSummary

		err := rows.Scan(
			&totalRecords,
			&summary.EnrollmentID,
			&summary.CourseID,
			&summary.CourseTitle,
			&summary.CourseSlug,
			&summary.CEHours,
			&summary.Status,
			&summary.Progress,
			&summary.EnrolledAt,
			&summary.ExpiresAt,
		)
		if err != nil {
			return nil, nil, err
		}

		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return summaries, metadata, nil
}
