package app

import (
	"io"
	"net/http"

	"github.com/lumenlearn/ce-platform/api"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Stripe sends at most a few KB of event payload; anything bigger is not a
// legitimate event.
const maxWebhookBytes = 65536

// StripeWebhookHandler ingests processor events. Signature failures are hard
// errors and Stripe may retry them; failures after verification are
// acknowledged with 200 so the processor's retry loop cannot re-apply a
// partially processed event, and the error is logged for manual remediation.
func (app *Application) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), app.config.Stripe.WebhookSecret)
	if err != nil {
		logger.Warn("webhook signature verification failed", "error", err)
		app.errorResponse(w, r, http.StatusBadRequest, "webhook signature verification failed")
		return
	}

	resp := api.WebhookAckResponse{Received: true}

	err = app.reconciler.HandleEvent(r.Context(), event)
	if err != nil {
		logger.Error("webhook processing failed",
			"eventId", event.ID,
			"type", event.Type,
			"error", err,
		)
		resp.Error = ptr(err.Error())
	}

	writeErr := app.writeJSON(w, http.StatusOK, resp, nil)
	if writeErr != nil {
		app.serverErrorResponse(w, r, writeErr)
	}
}
