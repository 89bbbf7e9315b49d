package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/lumenlearn/ce-platform/api"
	"github.com/lumenlearn/ce-platform/internal/mailer"
	"github.com/lumenlearn/ce-platform/internal/mocks"
	appvalidator "github.com/lumenlearn/ce-platform/internal/validator"
)

const testWebhookSecret = "whsec_test_secret"

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		config: Config{
			Env: "test",
			Stripe: StripeConfig{
				WebhookSecret: testWebhookSecret,
			},
		},
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		validator:      appvalidator.NewValidator(),
		mailer:         mailer.NewMockMailer(),
		sessionManager: scs.New(),

		userRepo:         &mocks.MockUserRepo{},
		catalogRepo:      new(mocks.MockCatalogRepo),
		promoRepo:        new(mocks.MockPromoRepo),
		paymentRepo:      new(mocks.MockPaymentRepo),
		enrollmentRepo:   new(mocks.MockEnrollmentRepo),
		subscriptionRepo: new(mocks.MockSubscriptionRepo),
		giftRepo:         new(mocks.MockGiftRepo),

		paymentProvider: new(mocks.MockPaymentProvider),
	}

	for _, opt := range opts {
		opt(app)
	}

	app.initServices()

	return app
}

func setupTestSession(t *testing.T, app *Application, r *http.Request, userId int) *http.Request {
	ctx, err := app.sessionManager.Load(r.Context(), "session")
	if err != nil {
		t.Errorf("Failed to load session: %v", err)
	}

	app.sessionManager.Put(ctx, SessionKeyUserId.String(), userId)

	return r.WithContext(ctx)
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, wantMessage string) {
	t.Helper()

	var errorResp api.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if wantMessage != "" && errorResp.Message != wantMessage {
		t.Errorf("Error message = %v, want %v", errorResp.Message, wantMessage)
	}
}

func checkValidationError(t *testing.T, w *httptest.ResponseRecorder, wantIssue string) {
	t.Helper()

	var validationResp api.ValidationErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
		t.Fatalf("Failed to decode validation error response: %v", err)
	}

	for _, vErr := range validationResp.ValidationErrors {
		if vErr.Issue == wantIssue {
			return
		}
	}

	t.Errorf("Expected validation error message '%s' not found in response", wantIssue)
}
