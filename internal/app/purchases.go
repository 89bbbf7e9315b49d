package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/lumenlearn/ce-platform/api"
	"github.com/lumenlearn/ce-platform/internal/domain"
	"github.com/lumenlearn/ce-platform/internal/purchase"
	"github.com/shopspring/decimal"
)

func (app *Application) PurchaseCourseHandler(w http.ResponseWriter, r *http.Request) {
	var input api.CoursePurchaseRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	user, err := app.userRepo.GetById(r.Context(), app.contextGetUserId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	result, err := app.purchases.CheckoutCourse(r.Context(), user, purchase.CourseCheckout{
		CourseID:  input.CourseId,
		PromoCode: deref(input.PromoCode),
	})
	if err != nil {
		app.purchaseErrorResponse(w, r, err)
		return
	}

	app.writeCheckoutResponse(w, r, result)
}

func (app *Application) PurchaseMembershipHandler(w http.ResponseWriter, r *http.Request) {
	var input api.MembershipPurchaseRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	user, err := app.userRepo.GetById(r.Context(), app.contextGetUserId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	result, err := app.purchases.CheckoutMembership(r.Context(), user, purchase.MembershipCheckout{
		Tier:      input.Tier,
		PromoCode: deref(input.PromoCode),
	})
	if err != nil {
		app.purchaseErrorResponse(w, r, err)
		return
	}

	app.writeCheckoutResponse(w, r, result)
}

func (app *Application) PurchaseProgramHandler(w http.ResponseWriter, r *http.Request) {
	var input api.ProgramPurchaseRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	user, err := app.userRepo.GetById(r.Context(), app.contextGetUserId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	installments := 0
	if input.Installments != nil {
		installments = *input.Installments
	}

	result, err := app.purchases.CheckoutProgram(r.Context(), user, purchase.ProgramCheckout{
		Program:      input.Program,
		PromoCode:    deref(input.PromoCode),
		Installments: installments,
	})
	if err != nil {
		app.purchaseErrorResponse(w, r, err)
		return
	}

	app.writeCheckoutResponse(w, r, result)
}

func (app *Application) PurchaseGiftHandler(w http.ResponseWriter, r *http.Request) {
	var input api.GiftPurchaseRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	user, err := app.userRepo.GetById(r.Context(), app.contextGetUserId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	var deliverOn *time.Time
	if input.DeliverOn != nil {
		deliverOn = &input.DeliverOn.Time
	}

	courseId := 0
	if input.CourseId != nil {
		courseId = *input.CourseId
	}

	result, err := app.purchases.CheckoutGift(r.Context(), user, purchase.GiftCheckout{
		RecipientEmail: string(input.RecipientEmail),
		RecipientName:  deref(input.RecipientName),
		CourseID:       courseId,
		Program:        deref(input.Program),
		MembershipTier: deref(input.MembershipTier),
		Message:        deref(input.Message),
		DeliverOn:      deliverOn,
	})
	if err != nil {
		app.purchaseErrorResponse(w, r, err)
		return
	}

	app.writeCheckoutResponse(w, r, result)
}

func (app *Application) ValidatePromoHandler(w http.ResponseWriter, r *http.Request) {
	var input api.PromoValidationRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil || !amount.IsPositive() {
		app.badRequestResponse(w, r, errors.New("amount must be a positive decimal number"))
		return
	}

	result, err := app.promoValidator.Validate(r.Context(), input.Code, domain.PurchaseKind(input.PurchaseKind), amount)
	if err != nil {
		var promoErr *domain.PromoError
		if errors.As(err, &promoErr) {
			// Policy rejections are a regular 200 so clients can show the
			// reason inline without error handling gymnastics.
			resp := api.PromoValidationResponse{
				Valid:  false,
				Reason: ptr(string(promoErr.Reason)),
			}
			app.writeJSON(w, http.StatusOK, resp, nil)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.PromoValidationResponse{
		Valid:          true,
		NormalizedCode: ptr(result.NormalizedCode),
		DiscountAmount: ptr(result.DiscountAmount.StringFixed(2)),
		FinalAmount:    ptr(result.FinalAmount.StringFixed(2)),
	}

	if result.DiscountType == domain.DiscountTypePercent {
		resp.DiscountPercent = ptr(result.DiscountPercent.String())
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetPricingHandler(w http.ResponseWriter, r *http.Request) {
	courses, tiers, programs, err := app.purchases.Pricing(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.PricingResponse{
		Courses:  make([]api.CoursePricing, len(courses)),
		Tiers:    make([]api.TierPricing, len(tiers)),
		Programs: make([]api.ProgramPricing, len(programs)),
	}

	for i, course := range courses {
		resp.Courses[i] = api.CoursePricing{
			CourseId: course.ID,
			Slug:     course.Slug,
			Title:    course.Title,
			Price:    course.Price.StringFixed(2),
			CeHours:  course.CEHours.String(),
		}
	}

	for i, tier := range tiers {
		resp.Tiers[i] = api.TierPricing{
			Tier:         tier.Tier,
			Name:         tier.Name,
			MonthlyPrice: tier.MonthlyPrice.StringFixed(2),
		}
	}

	for i, program := range programs {
		resp.Programs[i] = api.ProgramPricing{
			Program:         program.Program,
			Name:            program.Name,
			Price:           program.Price.StringFixed(2),
			MaxInstallments: program.MaxInstallments,
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// purchaseErrorResponse maps purchase-service failures onto the error
// taxonomy: domain policy violations are 400s, promo rejections carry the
// validator's reason verbatim, everything else is a 500.
func (app *Application) purchaseErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var promoErr *domain.PromoError

	switch {
	case errors.As(err, &promoErr):
		app.badRequestResponse(w, r, promoErr)
	case errors.Is(err, domain.ErrCourseNotPurchasable),
		errors.Is(err, domain.ErrUnknownTier),
		errors.Is(err, domain.ErrUnknownProgram),
		errors.Is(err, domain.ErrInvalidInstallments),
		errors.Is(err, domain.ErrGiftItemMissing):
		app.badRequestResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) writeCheckoutResponse(w http.ResponseWriter, r *http.Request, result *purchase.CheckoutResult) {
	resp := api.CheckoutSessionResponse{
		RedirectUrl: result.RedirectURL,
		Amount:      result.Amount.StringFixed(2),
		Currency:    result.Currency,
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func ptr[T any](v T) *T {
	return &v
}
