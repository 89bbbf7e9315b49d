// Package api holds the JSON request and response models of the HTTP surface.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,alpha,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,alpha,min=2,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	Id        int       `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Activated bool      `json:"activated"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int       `json:"version"`
}

type CoursePurchaseRequest struct {
	CourseId  int     `json:"courseId" validate:"required,gt=0"`
	PromoCode *string `json:"promoCode,omitempty" validate:"omitempty,promo_code"`
}

type MembershipPurchaseRequest struct {
	Tier      string  `json:"tier" validate:"required,min=2,max=50"`
	PromoCode *string `json:"promoCode,omitempty" validate:"omitempty,promo_code"`
}

type ProgramPurchaseRequest struct {
	Program      string  `json:"program" validate:"required,min=2,max=50"`
	PromoCode    *string `json:"promoCode,omitempty" validate:"omitempty,promo_code"`
	Installments *int    `json:"installments,omitempty" validate:"omitempty,installments"`
}

type GiftPurchaseRequest struct {
	RecipientEmail openapi_types.Email `json:"recipientEmail" validate:"required,email"`
	RecipientName  *string             `json:"recipientName,omitempty" validate:"omitempty,max=100"`
	CourseId       *int                `json:"courseId,omitempty" validate:"omitempty,gt=0"`
	Program        *string             `json:"program,omitempty" validate:"omitempty,min=2,max=50"`
	MembershipTier *string             `json:"membershipTier,omitempty" validate:"omitempty,min=2,max=50"`
	Message        *string             `json:"message,omitempty" validate:"omitempty,max=500"`
	DeliverOn      *openapi_types.Date `json:"deliverOn,omitempty"`
}

type CheckoutSessionResponse struct {
	RedirectUrl string `json:"redirectUrl"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

type PromoValidationRequest struct {
	Code         string `json:"code" validate:"required,promo_code"`
	Amount       string `json:"amount" validate:"required"`
	PurchaseKind string `json:"purchaseKind" validate:"required,oneof=course membership program"`
}

type PromoValidationResponse struct {
	Valid           bool    `json:"valid"`
	Reason          *string `json:"reason,omitempty"`
	NormalizedCode  *string `json:"normalizedCode,omitempty"`
	DiscountPercent *string `json:"discountPercent,omitempty"`
	DiscountAmount  *string `json:"discountAmount,omitempty"`
	FinalAmount     *string `json:"finalAmount,omitempty"`
}

type CoursePricing struct {
	CourseId int    `json:"courseId"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	CeHours  string `json:"ceHours"`
}

type TierPricing struct {
	Tier         string `json:"tier"`
	Name         string `json:"name"`
	MonthlyPrice string `json:"monthlyPrice"`
}

type ProgramPricing struct {
	Program         string `json:"program"`
	Name            string `json:"name"`
	Price           string `json:"price"`
	MaxInstallments int    `json:"maxInstallments"`
}

type PricingResponse struct {
	Courses  []CoursePricing  `json:"courses"`
	Tiers    []TierPricing    `json:"tiers"`
	Programs []ProgramPricing `json:"programs"`
}

type WebhookAckResponse struct {
	Received bool    `json:"received"`
	Error    *string `json:"error,omitempty"`
}

type EnrollmentStatusResponse struct {
	CourseId   int        `json:"courseId"`
	Status     string     `json:"status"`
	Progress   string     `json:"progress"`
	EnrolledAt time.Time  `json:"enrolledAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

type EnrollmentListResponse struct {
	Enrollments []EnrollmentStatusResponse `json:"enrollments"`
}

type EnrollmentSummary struct {
	Id          int        `json:"id"`
	CourseId    int        `json:"courseId"`
	CourseTitle string     `json:"courseTitle"`
	CourseSlug  string     `json:"courseSlug"`
	CeHours     string     `json:"ceHours"`
	Status      string     `json:"status"`
	Progress    string     `json:"progress"`
	EnrolledAt  time.Time  `json:"enrolledAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

type EnrollmentHistoryResponse struct {
	Enrollments []EnrollmentSummary `json:"enrollments"`
	Metadata    PaginationMetadata  `json:"metadata"`
}

type PaginationMetadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type AccessCheckResponse struct {
	CourseId  int  `json:"courseId"`
	HasAccess bool `json:"hasAccess"`
}

type EnrollmentHistoryParams struct {
	Page           int  `validate:"gte=1"`
	PageSize       int  `validate:"gte=1,lte=100"`
	IncludeExpired bool `validate:"-"`
}
