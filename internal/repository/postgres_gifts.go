package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumenlearn/ce-platform/internal/domain"
)

type PostgresGiftRepository struct {
	db *pgxpool.Pool
}

func NewPostgresGiftRepository(db *pgxpool.Pool) *PostgresGiftRepository {
	return &PostgresGiftRepository{
		db: db,
	}
}

func (p *PostgresGiftRepository) Create(ctx context.Context, gift *domain.Gift) error {
	if gift.ID == uuid.Nil {
		gift.ID = uuid.New()
	}

	query := `
		INSERT INTO gifts (
			id,
			payment_id,
			purchaser_id,
			recipient_email,
			recipient_name,
			product_kind,
			product_ref,
			message,
			deliver_on
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	return p.db.QueryRow(
		ctx,
		query,
		gift.ID,
		gift.PaymentID,
		gift.PurchaserID,
		gift.RecipientEmail,
		gift.RecipientName,
		gift.ProductKind,
		gift.ProductRef,
		gift.Message,
		gift.DeliverOn,
	).Scan(&gift.CreatedAt)
}

func (p *PostgresGiftRepository) MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) error {
	query := `
		UPDATE gifts
		SET delivered_at = $1
		WHERE id = $2 AND delivered_at IS NULL
	`

	tag, err := p.db.Exec(ctx, query, deliveredAt, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEditConflict
	}

	return nil
}

func (p *PostgresGiftRepository) GetUndelivered(ctx context.Context, dueBy time.Time) ([]domain.Gift, error) {
	query := `
		SELECT id, payment_id, purchaser_id, recipient_email, recipient_name,
			product_kind, product_ref, message, deliver_on, delivered_at, created_at
		FROM gifts
		WHERE delivered_at IS NULL AND (deliver_on IS NULL OR deliver_on <= $1)
		ORDER BY created_at
	`

	rows, err := p.db.Query(ctx, query, dueBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gifts := make([]domain.Gift, 0)

	for rows.Next() {
		var gift domain.Gift

		err := rows.Scan(
			&gift.ID,
			&gift.PaymentID,
			&gift.PurchaserID,
			&gift.RecipientEmail,
			&gift.RecipientName,
			&gift.ProductKind,
			&gift.ProductRef,
			&gift.Message,
			&gift.DeliverOn,
			&gift.DeliveredAt,
			&gift.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		gifts = append(gifts, gift)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return gifts, nil
}
