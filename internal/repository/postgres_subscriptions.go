package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumenlearn/ce-platform/internal/domain"
)

type PostgresSubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSubscriptionRepository(db *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{
		db: db,
	}
}

func (p *PostgresSubscriptionRepository) Upsert(ctx context.Context, subscription *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			user_id,
			provider_subscription_id,
			tier,
			status,
			current_period_start,
			current_period_end
		)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
		ON CONFLICT (user_id, tier) DO UPDATE
		SET provider_subscription_id = EXCLUDED.provider_subscription_id,
			status = EXCLUDED.status,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = NOW()
		RETURNING id, created_at
	`

	return p.db.QueryRow(
		ctx,
		query,
		subscription.UserID,
		subscription.ProviderSubscriptionID,
		subscription.Tier,
		subscription.Status,
		subscription.CurrentPeriodStart,
		subscription.CurrentPeriodEnd,
	).Scan(&subscription.ID, &subscription.CreatedAt)
}

func (p *PostgresSubscriptionRepository) GetActiveByUser(ctx context.Context, userID int) (*domain.Subscription, error) {
	// The most recently paid-up subscription wins; the domain decides whether
	// it still entitles access.
	query := `
		SELECT id, user_id, COALESCE(provider_subscription_id, ''), tier, status,
			current_period_start, current_period_end, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY current_period_end DESC
		LIMIT 1
	`

	var sub domain.Subscription

	err := p.db.QueryRow(ctx, query, userID).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.ProviderSubscriptionID,
		&sub.Tier,
		&sub.Status,
		&sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &sub, nil
}

func (p *PostgresSubscriptionRepository) UpdateByProviderId(
	ctx context.Context,
	providerSubscriptionID string,
	status domain.SubscriptionStatus,
	periodStart, periodEnd time.Time) error {

	query := `
		UPDATE subscriptions
		SET status = $1, current_period_start = $2, current_period_end = $3, updated_at = NOW()
		WHERE provider_subscription_id = $4
	`

	tag, err := p.db.Exec(ctx, query, status, periodStart, periodEnd, providerSubscriptionID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
