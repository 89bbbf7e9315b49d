// Package purchase orchestrates checkouts against the payment processor and
// reconciles the processor's webhook events into payment, enrollment,
// subscription, and gift rows.
//
// Nothing is written to the database when a checkout session is created; the
// purchase intent travels inside the session metadata and is only acted on
// once the processor confirms payment. Abandoned checkouts therefore leave no
// rows behind.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumenlearn/ce-platform/internal/domain"
	"github.com/lumenlearn/ce-platform/internal/promo"
	"github.com/shopspring/decimal"
)

type Service struct {
	catalog  domain.CatalogRepository
	promos   *promo.Validator
	provider domain.PaymentProvider
	logger   *slog.Logger
}

func NewService(
	catalog domain.CatalogRepository,
	promos *promo.Validator,
	provider domain.PaymentProvider,
	logger *slog.Logger) *Service {

	return &Service{
		catalog:  catalog,
		promos:   promos,
		provider: provider,
		logger:   logger,
	}
}

type CourseCheckout struct {
	CourseID  int
	PromoCode string
}

type MembershipCheckout struct {
	Tier      string
	PromoCode string
}

type ProgramCheckout struct {
	Program      string
	PromoCode    string
	Installments int
}

type GiftCheckout struct {
	RecipientEmail string
	RecipientName  string
	CourseID       int
	Program        string
	MembershipTier string
	Message        string
	DeliverOn      *time.Time
}

type CheckoutResult struct {
	RedirectURL string
	Amount      decimal.Decimal
	Currency    string
}

func (s *Service) CheckoutCourse(ctx context.Context, user *domain.User, req CourseCheckout) (*CheckoutResult, error) {
	course, err := s.resolveCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	amount, promoResult, err := s.applyPromo(ctx, req.PromoCode, domain.PurchaseKindCourse, course.Price)
	if err != nil {
		return nil, err
	}

	intent := domain.PurchaseIntent{
		UserID:    user.ID,
		Kind:      domain.PurchaseKindCourse,
		CourseID:  course.ID,
		PromoCode: promoCodeOf(promoResult),
	}

	item := domain.CheckoutItem{
		Name:        course.Title,
		Description: fmt.Sprintf("%s CE hours", course.CEHours.String()),
		UnitAmount:  amount,
	}

	return s.createSession(user, intent, []domain.CheckoutItem{item}, amount)
}

func (s *Service) CheckoutMembership(ctx context.Context, user *domain.User, req MembershipCheckout) (*CheckoutResult, error) {
	tier, err := s.resolveTier(ctx, req.Tier)
	if err != nil {
		return nil, err
	}

	amount, promoResult, err := s.applyPromo(ctx, req.PromoCode, domain.PurchaseKindMembership, tier.MonthlyPrice)
	if err != nil {
		return nil, err
	}

	intent := domain.PurchaseIntent{
		UserID:         user.ID,
		Kind:           domain.PurchaseKindMembership,
		MembershipTier: tier.Tier,
		PromoCode:      promoCodeOf(promoResult),
	}

	item := domain.CheckoutItem{
		Name:       fmt.Sprintf("%s membership", tier.Name),
		UnitAmount: amount,
		Recurring:  true,
	}

	return s.createSession(user, intent, []domain.CheckoutItem{item}, amount)
}

func (s *Service) CheckoutProgram(ctx context.Context, user *domain.User, req ProgramCheckout) (*CheckoutResult, error) {
	// Installments are domain-restricted to 2 or 3; reject before touching
	// the catalog or the processor.
	if req.Installments != 0 && req.Installments != 2 && req.Installments != 3 {
		return nil, domain.ErrInvalidInstallments
	}

	program, err := s.resolveProgram(ctx, req.Program)
	if err != nil {
		return nil, err
	}

	if req.Installments > program.MaxInstallments {
		return nil, domain.ErrInvalidInstallments
	}

	amount, promoResult, err := s.applyPromo(ctx, req.PromoCode, domain.PurchaseKindProgram, program.Price)
	if err != nil {
		return nil, err
	}

	intent := domain.PurchaseIntent{
		UserID:       user.ID,
		Kind:         domain.PurchaseKindProgram,
		Program:      program.Program,
		PromoCode:    promoCodeOf(promoResult),
		Installments: req.Installments,
	}

	item := domain.CheckoutItem{
		Name:       program.Name,
		UnitAmount: amount,
	}

	if req.Installments > 1 {
		// Rounded down so the installments never total more than the quoted
		// price; the cent or two of remainder is forgone.
		item.UnitAmount = amount.Div(decimal.NewFromInt(int64(req.Installments))).RoundFloor(2)
		item.Name = fmt.Sprintf("%s (%d monthly installments)", program.Name, req.Installments)
		item.Recurring = true
	}

	return s.createSession(user, intent, []domain.CheckoutItem{item}, amount)
}

func (s *Service) CheckoutGift(ctx context.Context, purchaser *domain.User, req GiftCheckout) (*CheckoutResult, error) {
	var (
		giftKind domain.PurchaseKind
		itemName string
		price    decimal.Decimal
	)

	switch {
	case req.CourseID != 0:
		course, err := s.resolveCourse(ctx, req.CourseID)
		if err != nil {
			return nil, err
		}
		giftKind = domain.PurchaseKindCourse
		itemName = fmt.Sprintf("Gift: %s", course.Title)
		price = course.Price
	case req.Program != "":
		program, err := s.resolveProgram(ctx, req.Program)
		if err != nil {
			return nil, err
		}
		giftKind = domain.PurchaseKindProgram
		itemName = fmt.Sprintf("Gift: %s", program.Name)
		price = program.Price
	case req.MembershipTier != "":
		tier, err := s.resolveTier(ctx, req.MembershipTier)
		if err != nil {
			return nil, err
		}
		giftKind = domain.PurchaseKindMembership
		itemName = fmt.Sprintf("Gift: %s membership (one month)", tier.Name)
		price = tier.MonthlyPrice
	default:
		return nil, domain.ErrGiftItemMissing
	}

	intent := domain.PurchaseIntent{
		UserID:         purchaser.ID,
		Kind:           domain.PurchaseKindGift,
		CourseID:       req.CourseID,
		Program:        req.Program,
		MembershipTier: req.MembershipTier,
		RecipientEmail: req.RecipientEmail,
		RecipientName:  req.RecipientName,
		GiftMessage:    req.Message,
		GiftKind:       giftKind,
		DeliverOn:      req.DeliverOn,
	}

	// Gifts are always a one-off charge, even for membership products.
	item := domain.CheckoutItem{
		Name:       itemName,
		UnitAmount: price,
	}

	return s.createSession(purchaser, intent, []domain.CheckoutItem{item}, price)
}

// Pricing lists the purchasable catalog for the public pricing endpoint.
func (s *Service) Pricing(ctx context.Context) ([]domain.Course, []domain.MembershipTier, []domain.Program, error) {
	courses, err := s.catalog.ListCourses(ctx, true)
	if err != nil {
		return nil, nil, nil, err
	}

	tiers, err := s.catalog.ListTiers(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	programs, err := s.catalog.ListPrograms(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	return courses, tiers, programs, nil
}

// The resolve helpers turn "not in the catalog" into the caller-facing
// rejection while letting genuine storage failures surface as what they are.

func (s *Service) resolveCourse(ctx context.Context, courseID int) (*domain.Course, error) {
	course, err := s.catalog.GetCourseById(ctx, courseID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrCourseNotPurchasable
		}
		return nil, err
	}

	if !course.Published {
		return nil, domain.ErrCourseNotPurchasable
	}

	return course, nil
}

func (s *Service) resolveTier(ctx context.Context, tier string) (*domain.MembershipTier, error) {
	t, err := s.catalog.GetTier(ctx, tier)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrUnknownTier
		}
		return nil, err
	}

	return t, nil
}

func (s *Service) resolveProgram(ctx context.Context, program string) (*domain.Program, error) {
	p, err := s.catalog.GetProgram(ctx, program)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrUnknownProgram
		}
		return nil, err
	}

	return p, nil
}

func (s *Service) applyPromo(
	ctx context.Context,
	code string,
	kind domain.PurchaseKind,
	base decimal.Decimal) (decimal.Decimal, *domain.PromoResult, error) {

	if code == "" {
		return base, nil, nil
	}

	result, err := s.promos.Validate(ctx, code, kind, base)
	if err != nil {
		return decimal.Zero, nil, err
	}

	return result.FinalAmount, result, nil
}

func (s *Service) createSession(
	user *domain.User,
	intent domain.PurchaseIntent,
	items []domain.CheckoutItem,
	amount decimal.Decimal) (*CheckoutResult, error) {

	checkoutSession, err := s.provider.CreateCheckoutSession(user, intent, items)
	if err != nil {
		return nil, err
	}

	s.logger.Info("created checkout session",
		"checkoutSessionId", checkoutSession.ID,
		"kind", intent.Kind,
		"userId", intent.UserID,
	)

	return &CheckoutResult{
		RedirectURL: checkoutSession.URL,
		Amount:      amount,
		Currency:    "USD",
	}, nil
}

func promoCodeOf(result *domain.PromoResult) string {
	if result == nil {
		return ""
	}

	return result.NormalizedCode
}
