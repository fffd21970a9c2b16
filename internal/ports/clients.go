package ports

import (
	"context"

	"github.com/shipfreeapis/payment-pipeline/internal/domain"
)

// RecordSink forwards one normalized record to the external system of
// record. Implementations perform no retries; a failed send is surfaced as
// an error so the acknowledgment policy can force sender redelivery.
type RecordSink interface {
	Record(ctx context.Context, rec domain.Record) error
}

type CheckoutSessionInput struct {
	Mode       string
	PriceID    string
	Email      string
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	SessionID string
	URL       string
}

// CheckoutProvider creates processor-hosted checkout sessions. The concrete
// client is constructed at startup and injected, never lazily cached.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, in CheckoutSessionInput) (CheckoutSession, error)
}
