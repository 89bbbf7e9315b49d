package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumenlearn/ce-platform/internal/domain"
)

type PostgresPromoRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPromoRepository(db *pgxpool.Pool) *PostgresPromoRepository {
	return &PostgresPromoRepository{
		db: db,
	}
}

func (p *PostgresPromoRepository) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	query := `
		SELECT id, code, discount_type, discount_value, applies_to,
			valid_from, valid_until, max_redemptions, redemption_count, created_at
		FROM promo_codes
		WHERE code = $1
	`

	var (
		promo     domain.PromoCode
		appliesTo []string
	)

	err := p.db.QueryRow(ctx, query, code).Scan(
		&promo.ID,
		&promo.Code,
		&promo.DiscountType,
		&promo.DiscountValue,
		&appliesTo,
		&promo.ValidFrom,
		&promo.ValidUntil,
		&promo.MaxRedemptions,
		&promo.RedemptionCount,
		&promo.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	promo.AppliesTo = make([]domain.PurchaseKind, len(appliesTo))
	for i, kind := range appliesTo {
		promo.AppliesTo[i] = domain.PurchaseKind(kind)
	}

	return &promo, nil
}

// IncrementRedemptions leans on the database's atomic update; there is no
// read-modify-write cycle to race against.
func (p *PostgresPromoRepository) IncrementRedemptions(ctx context.Context, code string) error {
	query := `
		UPDATE promo_codes
		SET redemption_count = redemption_count + 1
		WHERE code = $1
	`

	tag, err := p.db.Exec(ctx, query, code)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
