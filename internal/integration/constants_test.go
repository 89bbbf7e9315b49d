package integration_test

const (
	// User related constants
	TestUserId        = 1
	TestUserFirstName = "Avery"
	TestUserLastName  = "Stone"
	TestUserEmail     = "test@example.com"
	TestUserPassword  = "Test123!@#"

	// Catalog related constants
	TestCourseId            = 1
	TestCourseSlug          = "wound-care-basics"
	TestCourseTitle         = "Wound Care Basics"
	TestUnpublishedCourseId = 2
	TestTier                = "pro"
	TestProgram             = "rn-to-bsn"

	// Promo related constants
	TestPromoCode        = "SAVE10"
	TestExpiredPromoCode = "EXPIRED"

	// Payment related constants
	TestCheckoutSessionId  = "cs_test_123"
	TestCheckoutSessionURL = "https://checkout.stripe.com/pay/cs_test_123"
	TestSubscriptionId     = "sub_test_987"
	TestWebhookSecret      = "whsec_integration_secret"
)
