package domain

import (
	"context"
	"time"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

type Subscription struct {
	ID                     int
	UserID                 int
	ProviderSubscriptionID string
	Tier                   string
	Status                 SubscriptionStatus
	CurrentPeriodStart     time.Time
	CurrentPeriodEnd       time.Time
	CreatedAt              time.Time
	UpdatedAt              *time.Time
}

// Entitled reports whether the subscription grants access right now. A
// canceled subscription keeps access until its paid period runs out.
func (s Subscription) Entitled(now time.Time) bool {
	if s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusPastDue {
		return true
	}

	return s.Status == SubscriptionStatusCanceled && now.Before(s.CurrentPeriodEnd)
}

type SubscriptionRepository interface {
	Upsert(ctx context.Context, subscription *Subscription) error
	GetActiveByUser(ctx context.Context, userID int) (*Subscription, error)
	UpdateByProviderId(ctx context.Context, providerSubscriptionID string, status SubscriptionStatus, periodStart, periodEnd time.Time) error
}
