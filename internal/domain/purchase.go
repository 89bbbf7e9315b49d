package domain

import (
	"fmt"
	"strconv"
	"time"
)

type PurchaseKind string

const (
	PurchaseKindCourse     PurchaseKind = "course"
	PurchaseKindMembership PurchaseKind = "membership"
	PurchaseKindProgram    PurchaseKind = "program"
	PurchaseKindGift       PurchaseKind = "gift"
)

// PurchaseIntent is never persisted on its own. It is encoded into the
// processor's checkout-session metadata and reconstructed from the webhook
// event, so abandoned checkouts leave no rows behind.
type PurchaseIntent struct {
	UserID         int
	Kind           PurchaseKind
	CourseID       int
	MembershipTier string
	Program        string
	PromoCode      string
	Installments   int
	RecipientEmail string
	RecipientName  string
	GiftMessage    string
	DeliverOn      *time.Time

	// GiftKind is the kind of product being gifted when Kind == gift.
	GiftKind PurchaseKind
}

const (
	metaUserID         = "user_id"
	metaPurchaseKind   = "purchase_kind"
	metaCourseID       = "course_id"
	metaMembershipTier = "membership_tier"
	metaProgram        = "program"
	metaPromoCode      = "promo_code"
	metaInstallments   = "installments"
	metaRecipientEmail = "recipient_email"
	metaRecipientName  = "recipient_name"
	metaGiftMessage    = "gift_message"
	metaGiftKind       = "gift_kind"
	metaDeliverOn      = "deliver_on"
)

// ToMetadata flattens the intent into the string map Stripe accepts as
// checkout-session metadata. Zero values are omitted to stay under Stripe's
// per-key limits.
func (i PurchaseIntent) ToMetadata() map[string]string {
	m := map[string]string{
		metaUserID:       strconv.Itoa(i.UserID),
		metaPurchaseKind: string(i.Kind),
	}

	if i.CourseID != 0 {
		m[metaCourseID] = strconv.Itoa(i.CourseID)
	}
	if i.MembershipTier != "" {
		m[metaMembershipTier] = i.MembershipTier
	}
	if i.Program != "" {
		m[metaProgram] = i.Program
	}
	if i.PromoCode != "" {
		m[metaPromoCode] = i.PromoCode
	}
	if i.Installments != 0 {
		m[metaInstallments] = strconv.Itoa(i.Installments)
	}
	if i.RecipientEmail != "" {
		m[metaRecipientEmail] = i.RecipientEmail
	}
	if i.RecipientName != "" {
		m[metaRecipientName] = i.RecipientName
	}
	if i.GiftMessage != "" {
		m[metaGiftMessage] = i.GiftMessage
	}
	if i.GiftKind != "" {
		m[metaGiftKind] = string(i.GiftKind)
	}
	if i.DeliverOn != nil {
		m[metaDeliverOn] = i.DeliverOn.Format(time.DateOnly)
	}

	return m
}

// IntentFromMetadata rebuilds a PurchaseIntent from webhook-event metadata.
// A missing or malformed user id is an error so the reconciler can treat the
// event as a no-op instead of granting access to nobody.
func IntentFromMetadata(m map[string]string) (PurchaseIntent, error) {
	var intent PurchaseIntent

	userID, err := strconv.Atoi(m[metaUserID])
	if err != nil || userID <= 0 {
		return intent, fmt.Errorf("checkout metadata has no usable user id: %q", m[metaUserID])
	}

	kind := PurchaseKind(m[metaPurchaseKind])
	switch kind {
	case PurchaseKindCourse, PurchaseKindMembership, PurchaseKindProgram, PurchaseKindGift:
	default:
		return intent, fmt.Errorf("checkout metadata has unknown purchase kind: %q", m[metaPurchaseKind])
	}

	intent.UserID = userID
	intent.Kind = kind
	intent.MembershipTier = m[metaMembershipTier]
	intent.Program = m[metaProgram]
	intent.PromoCode = m[metaPromoCode]
	intent.RecipientEmail = m[metaRecipientEmail]
	intent.RecipientName = m[metaRecipientName]
	intent.GiftMessage = m[metaGiftMessage]
	intent.GiftKind = PurchaseKind(m[metaGiftKind])

	if v := m[metaCourseID]; v != "" {
		courseID, err := strconv.Atoi(v)
		if err != nil {
			return intent, fmt.Errorf("checkout metadata has malformed course id: %q", v)
		}
		intent.CourseID = courseID
	}

	if v := m[metaInstallments]; v != "" {
		installments, err := strconv.Atoi(v)
		if err != nil {
			return intent, fmt.Errorf("checkout metadata has malformed installment count: %q", v)
		}
		intent.Installments = installments
	}

	if v := m[metaDeliverOn]; v != "" {
		deliverOn, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return intent, fmt.Errorf("checkout metadata has malformed delivery date: %q", v)
		}
		intent.DeliverOn = &deliverOn
	}

	return intent, nil
}

// ProductRef is the metadata-friendly reference of the purchased product.
func (i PurchaseIntent) ProductRef() string {
	switch {
	case i.CourseID != 0:
		return strconv.Itoa(i.CourseID)
	case i.MembershipTier != "":
		return i.MembershipTier
	case i.Program != "":
		return i.Program
	}

	return ""
}
