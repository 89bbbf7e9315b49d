package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lumenlearn/ce-platform/internal/domain"
	"github.com/lumenlearn/ce-platform/internal/mailer"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

const (
	defaultAccessDays = 365
	gracePeriodDays   = 30
)

// Reconciler turns verified processor events into persisted purchase state.
// Redelivered events are detected by the payment row keyed on the checkout
// session id and acknowledged without further mutation.
type Reconciler struct {
	payments      domain.PaymentRepository
	enrollments   domain.EnrollmentRepository
	subscriptions domain.SubscriptionRepository
	gifts         domain.GiftRepository
	promos        domain.PromoRepository
	catalog       domain.CatalogRepository
	provider      domain.PaymentProvider
	mailer        mailer.Mailer
	logger        *slog.Logger
	now           func() time.Time
}

func NewReconciler(
	payments domain.PaymentRepository,
	enrollments domain.EnrollmentRepository,
	subscriptions domain.SubscriptionRepository,
	gifts domain.GiftRepository,
	promos domain.PromoRepository,
	catalog domain.CatalogRepository,
	provider domain.PaymentProvider,
	m mailer.Mailer,
	logger *slog.Logger) *Reconciler {

	return &Reconciler{
		payments:      payments,
		enrollments:   enrollments,
		subscriptions: subscriptions,
		gifts:         gifts,
		promos:        promos,
		catalog:       catalog,
		provider:      provider,
		mailer:        m,
		logger:        logger,
		now:           time.Now,
	}
}

// HandleEvent processes a signature-verified event. A nil return means the
// event is settled from the processor's point of view, including the no-op
// cases (duplicates, unusable metadata, event types we don't care about).
func (r *Reconciler) HandleEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("unmarshal checkout session from event %s: %w", event.ID, err)
		}

		return r.handleCheckoutCompleted(ctx, event.ID, &session)

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("unmarshal subscription from event %s: %w", event.ID, err)
		}

		return r.handleSubscriptionChange(ctx, event.Type, &sub)

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return fmt.Errorf("unmarshal charge from event %s: %w", event.ID, err)
		}

		return r.handleChargeReversal(ctx, event.ID, charge.PaymentIntent, domain.PaymentStatusRefunded, "charge refunded")

	case "charge.dispute.created":
		var dispute stripe.Dispute
		if err := json.Unmarshal(event.Data.Raw, &dispute); err != nil {
			return fmt.Errorf("unmarshal dispute from event %s: %w", event.ID, err)
		}

		return r.handleChargeReversal(ctx, event.ID, dispute.PaymentIntent, domain.PaymentStatusFailed, "charge disputed")

	default:
		r.logger.Info("ignoring webhook event", "eventId", event.ID, "type", event.Type)
		return nil
	}
}

func (r *Reconciler) handleCheckoutCompleted(ctx context.Context, eventID string, session *stripe.CheckoutSession) error {
	intent, err := domain.IntentFromMetadata(session.Metadata)
	if err != nil {
		// An event we can't attribute to a user is a no-op, not a failure:
		// retrying it cannot succeed either.
		r.logger.Warn("discarding checkout event with unusable metadata",
			"eventId", eventID,
			"checkoutSessionId", session.ID,
			"error", err,
		)
		return nil
	}

	if _, err := r.payments.GetByCheckoutSessionId(ctx, session.ID); err == nil {
		r.logger.Info("duplicate checkout event, already reconciled",
			"eventId", eventID,
			"checkoutSessionId", session.ID,
		)
		return nil
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		return err
	}

	now := r.now()
	payment := domain.Payment{
		CheckoutSessionID: session.ID,
		EventID:           eventID,
		UserID:            intent.UserID,
		ProductKind:       intent.Kind,
		ProductRef:        intent.ProductRef(),
		Amount:            decimal.NewFromInt(session.AmountTotal).Div(decimal.NewFromInt(100)),
		Currency:          strings.ToUpper(string(session.Currency)),
		Status:            domain.PaymentStatusCompleted,
		PaymentDate:       &now,
	}

	// The payment row is written before any access is granted. A crash here
	// leaves a payment without an enrollment, which a reconciliation sweep
	// can detect and repair; the reverse gap could not be.
	err = r.payments.Create(ctx, &payment)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) {
			r.logger.Info("duplicate checkout event, lost insert race",
				"eventId", eventID,
				"checkoutSessionId", session.ID,
			)
			return nil
		}

		return err
	}

	switch intent.Kind {
	case domain.PurchaseKindCourse:
		err = r.grantEnrollment(ctx, &payment, intent)
	case domain.PurchaseKindMembership:
		err = r.grantSubscription(ctx, session, intent, intent.MembershipTier)
	case domain.PurchaseKindProgram:
		if intent.Installments > 1 {
			err = r.grantSubscription(ctx, session, intent, intent.Program)
		}
	case domain.PurchaseKindGift:
		err = r.recordGift(ctx, &payment, intent)
	}

	if err != nil {
		return err
	}

	if intent.PromoCode != "" {
		// Allowance is consumed here, at confirmation, never at validation.
		if err := r.promos.IncrementRedemptions(ctx, intent.PromoCode); err != nil {
			r.logger.Error("failed to increment promo redemptions",
				"promoCode", intent.PromoCode,
				"error", err,
			)
		}
	}

	r.sendReceipt(session, intent, payment)

	return nil
}

func (r *Reconciler) grantEnrollment(ctx context.Context, payment *domain.Payment, intent domain.PurchaseIntent) error {
	accessDays := defaultAccessDays
	if course, err := r.catalog.GetCourseById(ctx, intent.CourseID); err == nil && course.AccessDays > 0 {
		accessDays = course.AccessDays
	}

	now := r.now()
	expiresAt := now.AddDate(0, 0, accessDays)
	graceEndsAt := expiresAt.AddDate(0, 0, gracePeriodDays)

	enrollment := domain.Enrollment{
		UserID:            intent.UserID,
		CourseID:          intent.CourseID,
		PaymentID:         &payment.ID,
		Status:            domain.EnrollmentStatusActive,
		EnrolledAt:        now,
		ExpiresAt:         &expiresAt,
		GracePeriodEndsAt: &graceEndsAt,
	}

	err := r.enrollments.Create(ctx, &enrollment)
	if errors.Is(err, domain.ErrAlreadyEnrolled) {
		r.logger.Warn("payment recorded for an existing enrollment",
			"userId", intent.UserID,
			"courseId", intent.CourseID,
			"paymentId", payment.ID,
		)
		return nil
	}

	return err
}

func (r *Reconciler) grantSubscription(ctx context.Context, session *stripe.CheckoutSession, intent domain.PurchaseIntent, tier string) error {
	now := r.now()

	sub := domain.Subscription{
		UserID:             intent.UserID,
		Tier:               tier,
		Status:             domain.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
	}

	if session.Subscription != nil {
		sub.ProviderSubscriptionID = session.Subscription.ID

		// The session payload carries only the subscription id; fetch the
		// rest so period bounds come from the processor, not our clock.
		if providerSub, err := r.provider.GetSubscription(session.Subscription.ID); err == nil {
			if start, end, ok := subscriptionPeriod(providerSub); ok {
				sub.CurrentPeriodStart = start
				sub.CurrentPeriodEnd = end
			}
		} else {
			r.logger.Warn("could not fetch subscription from processor",
				"subscriptionId", session.Subscription.ID,
				"error", err,
			)
		}
	}

	return r.subscriptions.Upsert(ctx, &sub)
}

func (r *Reconciler) recordGift(ctx context.Context, payment *domain.Payment, intent domain.PurchaseIntent) error {
	gift := domain.Gift{
		PaymentID:      payment.ID,
		PurchaserID:    intent.UserID,
		RecipientEmail: intent.RecipientEmail,
		RecipientName:  intent.RecipientName,
		ProductKind:    intent.GiftKind,
		ProductRef:     intent.ProductRef(),
		Message:        intent.GiftMessage,
		DeliverOn:      intent.DeliverOn,
	}

	err := r.gifts.Create(ctx, &gift)
	if err != nil {
		return err
	}

	now := r.now()
	if intent.DeliverOn != nil && intent.DeliverOn.After(now) {
		// Scheduled for the future; DeliverDueGifts picks it up later.
		return nil
	}

	go func() {
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("panic while sending gift notification", "panic", p)
			}
		}()

		if err := r.deliverGift(context.Background(), &gift); err != nil {
			r.logger.Error("failed to send gift notification", "giftId", gift.ID, "error", err)
		}
	}()

	return nil
}

// DeliverDueGifts notifies the recipients of gifts whose scheduled delivery
// date has arrived and returns how many were delivered. A failed delivery is
// logged and left undelivered for the next sweep.
func (r *Reconciler) DeliverDueGifts(ctx context.Context) (int, error) {
	due, err := r.gifts.GetUndelivered(ctx, r.now())
	if err != nil {
		return 0, err
	}

	delivered := 0
	for i := range due {
		if err := r.deliverGift(ctx, &due[i]); err != nil {
			r.logger.Error("failed to deliver scheduled gift", "giftId", due[i].ID, "error", err)
			continue
		}
		delivered++
	}

	return delivered, nil
}

func (r *Reconciler) deliverGift(ctx context.Context, gift *domain.Gift) error {
	data := map[string]any{
		"recipientName": gift.RecipientName,
		"message":       gift.Message,
		"productRef":    gift.ProductRef,
	}

	if err := r.mailer.Send(gift.RecipientEmail, "gift_notification.tmpl", data); err != nil {
		return err
	}

	err := r.gifts.MarkDelivered(ctx, gift.ID, r.now())
	if errors.Is(err, domain.ErrEditConflict) {
		// A concurrent sweep delivered it first.
		return nil
	}

	return err
}

// handleChargeReversal flips a payment row to a terminal status when the
// processor reports a refund or a dispute. Charge events carry only a payment
// intent, so the checkout session our rows are keyed on has to be looked up.
func (r *Reconciler) handleChargeReversal(
	ctx context.Context,
	eventID string,
	paymentIntent *stripe.PaymentIntent,
	status domain.PaymentStatus,
	reason string) error {

	if paymentIntent == nil {
		r.logger.Warn("charge event without a payment intent", "eventId", eventID)
		return nil
	}

	session, err := r.provider.GetCheckoutSessionByPaymentIntent(paymentIntent.ID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			r.logger.Warn("charge event for a payment intent outside checkout",
				"eventId", eventID,
				"paymentIntentId", paymentIntent.ID,
			)
			return nil
		}

		return err
	}

	err = r.payments.UpdateStatus(ctx, session.ID, status, reason)
	if errors.Is(err, domain.ErrRecordNotFound) {
		r.logger.Warn("charge event for an unrecorded payment",
			"eventId", eventID,
			"checkoutSessionId", session.ID,
		)
		return nil
	}

	return err
}

func (r *Reconciler) handleSubscriptionChange(ctx context.Context, eventType stripe.EventType, sub *stripe.Subscription) error {
	status := domain.SubscriptionStatusActive

	switch {
	case eventType == "customer.subscription.deleted" || sub.Status == stripe.SubscriptionStatusCanceled:
		status = domain.SubscriptionStatusCanceled
	case sub.Status == stripe.SubscriptionStatusPastDue || sub.Status == stripe.SubscriptionStatusUnpaid:
		status = domain.SubscriptionStatusPastDue
	}

	start, end, ok := subscriptionPeriod(sub)
	if !ok {
		start, end = r.now(), r.now().AddDate(0, 1, 0)
	}

	err := r.subscriptions.UpdateByProviderId(ctx, sub.ID, status, start, end)
	if errors.Is(err, domain.ErrRecordNotFound) {
		// Lifecycle event for a subscription we never recorded; nothing to
		// reconcile against.
		r.logger.Warn("subscription event for unknown subscription", "subscriptionId", sub.ID)
		return nil
	}

	return err
}

func subscriptionPeriod(sub *stripe.Subscription) (time.Time, time.Time, bool) {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return time.Time{}, time.Time{}, false
	}

	item := sub.Items.Data[0]
	if item.CurrentPeriodEnd == 0 {
		return time.Time{}, time.Time{}, false
	}

	return time.Unix(item.CurrentPeriodStart, 0), time.Unix(item.CurrentPeriodEnd, 0), true
}

func (r *Reconciler) sendReceipt(session *stripe.CheckoutSession, intent domain.PurchaseIntent, payment domain.Payment) {
	email := session.CustomerEmail
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}
	if email == "" {
		return
	}

	go func() {
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("panic while sending receipt", "panic", p)
			}
		}()

		data := map[string]any{
			"productKind": string(intent.Kind),
			"productRef":  payment.ProductRef,
			"amount":      payment.Amount.StringFixed(2),
			"currency":    payment.Currency,
		}

		if err := r.mailer.Send(email, "purchase_receipt.tmpl", data); err != nil {
			r.logger.Error("failed to send receipt", "checkoutSessionId", payment.CheckoutSessionID, "error", err)
		}
	}()
}
