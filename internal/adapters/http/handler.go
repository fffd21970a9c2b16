package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/shipfreeapis/payment-pipeline/internal/adapters/security"
	"github.com/shipfreeapis/payment-pipeline/internal/application"
	"github.com/shipfreeapis/payment-pipeline/internal/domain"
)

// signatureHeader carries the processor's HMAC signature over the raw body.
const signatureHeader = "Stripe-Signature"

// Processor payloads are small; bound the read regardless.
const maxWebhookBody = 1 << 20

type Handler struct {
	service  *application.Service
	verifier *security.Verifier
}

func NewHandler(service *application.Service, verifier *security.Verifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

// paymentsWebhook is the acknowledgment policy in one place. The status code
// is the whole contract: 400 means the sender must not retry, 500 means it
// should redeliver the event later, 200 means done (including recognized
// no-ops and unrecognized types).
func (h *Handler) paymentsWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.verifier.Configured() {
		// Operational misconfiguration. Redelivery won't fix it, but the
		// interface cannot distinguish this from a transient fault.
		logHTTPOperationError(ctx, "payments_webhook", http.StatusInternalServerError,
			"webhook secret not configured", domain.ErrSecretNotConfigured)
		writeError(w, http.StatusInternalServerError, "webhook secret not configured")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		logHTTPOperationError(ctx, "payments_webhook", http.StatusBadRequest, "unreadable request body", err)
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	sig := r.Header.Get(signatureHeader)
	if sig == "" {
		logHTTPOperationError(ctx, "payments_webhook", http.StatusBadRequest,
			"missing signature header", domain.ErrMissingSignature)
		writeError(w, http.StatusBadRequest, "missing signature")
		return
	}

	// Verification runs over the exact raw bytes read above; the body is
	// only parsed after it authenticates.
	if err := h.verifier.Verify(sig, body); err != nil {
		logHTTPOperationError(ctx, "payments_webhook", http.StatusBadRequest, "signature verification failed", err)
		writeError(w, http.StatusBadRequest, "signature verification failed")
		return
	}

	ev, err := domain.ParseEvent(body)
	if err != nil {
		logHTTPOperationError(ctx, "payments_webhook", http.StatusBadRequest, "malformed event payload", err)
		writeError(w, http.StatusBadRequest, "malformed event payload")
		return
	}

	if err := h.service.ProcessEvent(ctx, ev); err != nil {
		// 500 pushes at-least-once delivery onto the sender.
		logHTTPOperationError(ctx, "payments_webhook", http.StatusInternalServerError, "event processing failed", err)
		writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}

	writeReceived(w)
}

func (h *Handler) createCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req application.CreateCheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logHTTPOperationError(ctx, "create_checkout", http.StatusBadRequest, "invalid json body", err)
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	out, err := h.service.CreateCheckoutSession(ctx, req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		logHTTPOperationError(ctx, "create_checkout", status, "checkout session creation failed", err)
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if !h.verifier.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "missing webhook secret"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
