package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MembershipTier keys and program keys are small, admin-curated sets, so they are
// modeled as rows keyed by a stable string rather than serial ids.
type MembershipTier struct {
	Tier               string
	Name               string
	MonthlyPrice       decimal.Decimal
	IncludesAllCourses bool
}

type Program struct {
	Program         string
	Name            string
	Price           decimal.Decimal
	MaxInstallments int
}

type Course struct {
	ID          int
	Slug        string
	Title       string
	Description string
	Price       decimal.Decimal
	CEHours     decimal.Decimal
	Published   bool
	AccessDays  int
	CreatedAt   time.Time
}

type CatalogRepository interface {
	GetCourseById(ctx context.Context, id int) (*Course, error)
	GetTier(ctx context.Context, tier string) (*MembershipTier, error)
	GetProgram(ctx context.Context, program string) (*Program, error)
	ListCourses(ctx context.Context, publishedOnly bool) ([]Course, error)
	ListTiers(ctx context.Context) ([]MembershipTier, error)
	ListPrograms(ctx context.Context) ([]Program, error)
}
