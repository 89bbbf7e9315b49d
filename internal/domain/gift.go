package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Gift records a paid gift that may not have been delivered yet: delivery can
// be scheduled for a future date, so "paid" and "delivered" are distinct.
type Gift struct {
	ID             uuid.UUID
	PaymentID      int
	PurchaserID    int
	RecipientEmail string
	RecipientName  string
	ProductKind    PurchaseKind
	ProductRef     string
	Message        string
	DeliverOn      *time.Time
	DeliveredAt    *time.Time
	CreatedAt      time.Time
}

type GiftRepository interface {
	Create(ctx context.Context, gift *Gift) error
	MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) error
	GetUndelivered(ctx context.Context, dueBy time.Time) ([]Gift, error)
}
