package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumenlearn/ce-platform/internal/domain"
)

type PostgresCatalogRepository struct {
	db *pgxpool.Pool
}

func NewPostgresCatalogRepository(db *pgxpool.Pool) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		db: db,
	}
}

func (p *PostgresCatalogRepository) GetCourseById(ctx context.Context, id int) (*domain.Course, error) {
	query := `
		SELECT id, slug, title, description, price, ce_hours, published, access_days, created_at
		FROM courses
		WHERE id = $1
	`

	var course domain.Course

	err := p.db.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.Slug,
		&course.Title,
		&course.Description,
		&course.Price,
		&course.CEHours,
		&course.Published,
		&course.AccessDays,
		&course.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &course, nil
}

func (p *PostgresCatalogRepository) GetTier(ctx context.Context, tier string) (*domain.MembershipTier, error) {
	query := `
		SELECT tier, name, monthly_price, includes_all_courses
		FROM membership_tiers
		WHERE tier = $1
	`

	var t domain.MembershipTier

	err := p.db.QueryRow(ctx, query, tier).Scan(
		&t.Tier,
		&t.Name,
		&t.MonthlyPrice,
		&t.IncludesAllCourses,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &t, nil
}

func (p *PostgresCatalogRepository) GetProgram(ctx context.Context, program string) (*domain.Program, error) {
	query := `
		SELECT program, name, price, max_installments
		FROM programs
		WHERE program = $1
	`

	var prog domain.Program

	err := p.db.QueryRow(ctx, query, program).Scan(
		&prog.Program,
		&prog.Name,
		&prog.Price,
		&prog.MaxInstallments,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &prog, nil
}

func (p *PostgresCatalogRepository) ListCourses(ctx context.Context, publishedOnly bool) ([]domain.Course, error) {
	query := `
		SELECT id, slug, title, description, price, ce_hours, published, access_days, created_at
		FROM courses
		WHERE published OR NOT $1
		ORDER BY title
	`

	rows, err := p.db.Query(ctx, query, publishedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]domain.Course, 0)

	for rows.Next() {
		var course domain.Course

		err := rows.Scan(
			&course.ID,
			&course.Slug,
			&course.Title,
			&course.Description,
			&course.Price,
			&course.CEHours,
			&course.Published,
			&course.AccessDays,
			&course.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		courses = append(courses, course)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

func (p *PostgresCatalogRepository) ListTiers(ctx context.Context) ([]domain.MembershipTier, error) {
	query := `
		SELECT tier, name, monthly_price, includes_all_courses
		FROM membership_tiers
		ORDER BY monthly_price
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := make([]domain.MembershipTier, 0)

	for rows.Next() {
		var t domain.MembershipTier

		err := rows.Scan(&t.Tier, &t.Name, &t.MonthlyPrice, &t.IncludesAllCourses)
		if err != nil {
			return nil, err
		}

		tiers = append(tiers, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tiers, nil
}

func (p *PostgresCatalogRepository) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	query := `
		SELECT program, name, price, max_installments
		FROM programs
		ORDER BY name
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	programs := make([]domain.Program, 0)

	for rows.Next() {
		var prog domain.Program

		err := rows.Scan(&prog.Program, &prog.Name, &prog.Price, &prog.MaxInstallments)
		if err != nil {
			return nil, err
		}

		programs = append(programs, prog)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return programs, nil
}
