package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shipfreeapis/payment-pipeline/internal/domain"
	"github.com/shipfreeapis/payment-pipeline/internal/ports"
)

// Service runs the payment event pipeline: classify an authenticated event,
// normalize it into a record, forward the record downstream. It holds no
// state between requests; ordering and dedup are the sender's and the
// store's problems respectively.
type Service struct {
	cfg      Config
	sink     ports.RecordSink
	checkout ports.CheckoutProvider
	logger   *slog.Logger
	nowFn    func() time.Time
}

type Dependencies struct {
	Config   Config
	Sink     ports.RecordSink
	Checkout ports.CheckoutProvider
	Logger   *slog.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      deps.Config,
		sink:     deps.Sink,
		checkout: deps.Checkout,
		logger:   logger.With("module", "pipeline", "layer", "application"),
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// ProcessEvent routes one authenticated event to exactly one handler.
// Unrecognized types are acknowledged as no-ops so the sender is free to
// introduce new event kinds without breaking deliveries.
func (s *Service) ProcessEvent(ctx context.Context, ev domain.Event) error {
	s.logger.InfoContext(ctx, "event received", "event_id", ev.ID, "event_type", ev.RawType)

	switch ev.Type {
	case domain.EventCheckoutCompleted:
		session, ok := ev.Payload.(domain.CheckoutSession)
		if !ok {
			return fmt.Errorf("%w: payload does not match %s", domain.ErrMalformedPayload, ev.Type)
		}
		return s.handleCheckoutCompleted(ctx, ev.ID, session)
	case domain.EventInvoicePaid:
		inv, ok := ev.Payload.(domain.Invoice)
		if !ok {
			return fmt.Errorf("%w: payload does not match %s", domain.ErrMalformedPayload, ev.Type)
		}
		return s.handleInvoicePaid(ctx, ev.ID, inv)
	case domain.EventInvoiceFailed:
		inv, ok := ev.Payload.(domain.Invoice)
		if !ok {
			return fmt.Errorf("%w: payload does not match %s", domain.ErrMalformedPayload, ev.Type)
		}
		return s.handleInvoiceFailed(ctx, ev.ID, inv)
	case domain.EventSubscriptionDeleted:
		sub, ok := ev.Payload.(domain.Subscription)
		if !ok {
			return fmt.Errorf("%w: payload does not match %s", domain.ErrMalformedPayload, ev.Type)
		}
		return s.handleSubscriptionDeleted(ctx, ev.ID, sub)
	case domain.EventSubscriptionUpdated:
		sub, ok := ev.Payload.(domain.Subscription)
		if !ok {
			return fmt.Errorf("%w: payload does not match %s", domain.ErrMalformedPayload, ev.Type)
		}
		return s.handleSubscriptionUpdated(ctx, ev.ID, sub)
	case domain.EventUnrecognized:
		s.logger.InfoContext(ctx, "unhandled event type acknowledged", "event_id", ev.ID, "event_type", ev.RawType)
		return nil
	}
	return fmt.Errorf("%w: unmapped event type %q", domain.ErrMalformedPayload, ev.Type)
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, eventID string, session domain.CheckoutSession) error {
	s.logger.InfoContext(ctx, "checkout completed", "event_id", eventID, "session_id", session.SessionID)
	return s.send(ctx, normalizeCheckoutCompleted(eventID, session, s.timestamp()))
}

func (s *Service) handleInvoicePaid(ctx context.Context, eventID string, inv domain.Invoice) error {
	// Initial subscription payments arrive as checkout completions; only the
	// recurring cycle produces a renewal record.
	if inv.BillingReason != billingReasonSubscriptionCycle {
		s.logger.InfoContext(ctx, "invoice paid outside billing cycle, no record emitted",
			"event_id", eventID, "billing_reason", inv.BillingReason)
		return nil
	}
	rec := normalizeInvoice(eventID, inv, domain.PurchaseRenewed, inv.AmountPaid, s.timestamp())
	s.logger.InfoContext(ctx, "subscription renewed", "event_id", eventID, "subscription_id", rec.SubscriptionID)
	return s.send(ctx, rec)
}

func (s *Service) handleInvoiceFailed(ctx context.Context, eventID string, inv domain.Invoice) error {
	s.logger.InfoContext(ctx, "invoice payment failed", "event_id", eventID, "invoice_id", inv.InvoiceID)
	return s.send(ctx, normalizeInvoice(eventID, inv, domain.PurchaseFailed, inv.AmountDue, s.timestamp()))
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, eventID string, sub domain.Subscription) error {
	s.logger.InfoContext(ctx, "subscription canceled", "event_id", eventID, "subscription_id", sub.SubscriptionID)
	return s.send(ctx, normalizeSubscription(eventID, sub, domain.SubscriptionCanceled, s.timestamp()))
}

func (s *Service) handleSubscriptionUpdated(ctx context.Context, eventID string, sub domain.Subscription) error {
	status, ok := domain.ParseSubscriptionStatus(sub.Status)
	if !ok {
		// Statuses outside the downstream enum (trialing, incomplete, ...)
		// carry no row the store can represent.
		s.logger.InfoContext(ctx, "subscription status outside sync enum, no record emitted",
			"event_id", eventID, "subscription_id", sub.SubscriptionID, "status", sub.Status)
		return nil
	}
	s.logger.InfoContext(ctx, "subscription updated", "event_id", eventID, "subscription_id", sub.SubscriptionID, "status", status)
	return s.send(ctx, normalizeSubscription(eventID, sub, status, s.timestamp()))
}

func (s *Service) send(ctx context.Context, rec domain.Record) error {
	if err := s.sink.Record(ctx, rec); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "record synced", "event_id", rec.Key())
	return nil
}

func (s *Service) timestamp() string {
	return s.nowFn().UTC().Format(time.RFC3339)
}

// CreateCheckoutSession asks the processor for a hosted checkout URL. This
// is the producer side of the pipeline: completing the session comes back
// through the webhook as a checkout.session.completed event.
func (s *Service) CreateCheckoutSession(ctx context.Context, in CreateCheckoutInput) (CheckoutSessionOutput, error) {
	if strings.TrimSpace(in.PriceID) == "" {
		return CheckoutSessionOutput{}, fmt.Errorf("%w: priceId is required", domain.ErrInvalidInput)
	}

	mode := "payment"
	if s.isRecurringPrice(in.PriceID) {
		mode = "subscription"
	}

	successURL := in.SuccessURL
	if successURL == "" {
		successURL = s.cfg.BaseURL + "/success?session_id={CHECKOUT_SESSION_ID}"
	}
	cancelURL := in.CancelURL
	if cancelURL == "" {
		cancelURL = s.cfg.BaseURL + "/pricing"
	}

	sess, err := s.checkout.CreateSession(ctx, ports.CheckoutSessionInput{
		Mode:       mode,
		PriceID:    in.PriceID,
		Email:      strings.TrimSpace(in.Email),
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		return CheckoutSessionOutput{}, err
	}
	s.logger.InfoContext(ctx, "checkout session created", "session_id", sess.SessionID, "mode", mode)
	return CheckoutSessionOutput{URL: sess.URL, SessionID: sess.SessionID}, nil
}

func (s *Service) isRecurringPrice(priceID string) bool {
	for _, id := range s.cfg.RecurringPriceIDs {
		if id == priceID {
			return true
		}
	}
	return false
}
