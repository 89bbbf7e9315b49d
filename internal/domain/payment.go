package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment is created exclusively by the webhook reconciler once a processor
// event has been verified. The unique checkout session id is what makes event
// redelivery idempotent.
type Payment struct {
	ID                int
	CheckoutSessionID string
	EventID           string
	UserID            int
	ProductKind       PurchaseKind
	ProductRef        string
	Amount            decimal.Decimal
	Currency          string
	Status            PaymentStatus
	ErrorMsg          *string
	PaymentDate       *time.Time
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

type PaymentRepository interface {
	// Create returns ErrDuplicatePayment when a row already exists for the
	// payment's checkout session id.
	Create(ctx context.Context, payment *Payment) error
	GetByCheckoutSessionId(ctx context.Context, checkoutSessionID string) (*Payment, error)
	UpdateStatus(ctx context.Context, checkoutSessionID string, status PaymentStatus, errMsg string) error
}
