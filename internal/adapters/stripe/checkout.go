// Package stripe wraps the payment processor SDK behind the checkout port.
package stripe

import (
	"context"
	"fmt"
	"log/slog"

	stripesdk "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"

	"github.com/shipfreeapis/payment-pipeline/internal/ports"
)

// CheckoutClient implements ports.CheckoutProvider. The SDK client is built
// once at startup and injected; its lifecycle belongs to the runtime, not to
// a lazily-populated package variable.
type CheckoutClient struct {
	api    *stripeclient.API
	logger *slog.Logger
}

func NewCheckoutClient(secretKey string, logger *slog.Logger) *CheckoutClient {
	if logger == nil {
		logger = slog.Default()
	}
	api := &stripeclient.API{}
	api.Init(secretKey, nil)
	return &CheckoutClient{
		api:    api,
		logger: logger.With("module", "stripe", "layer", "adapter"),
	}
}

func (c *CheckoutClient) CreateSession(ctx context.Context, in ports.CheckoutSessionInput) (ports.CheckoutSession, error) {
	params := &stripesdk.CheckoutSessionParams{
		Mode:               stripesdk.String(in.Mode),
		PaymentMethodTypes: stripesdk.StringSlice([]string{"card"}),
		LineItems: []*stripesdk.CheckoutSessionLineItemParams{
			{
				Price:    stripesdk.String(in.PriceID),
				Quantity: stripesdk.Int64(1),
			},
		},
		SuccessURL:          stripesdk.String(in.SuccessURL),
		CancelURL:           stripesdk.String(in.CancelURL),
		AllowPromotionCodes: stripesdk.Bool(true),
	}
	params.Context = ctx
	params.AddMetadata("source", "shipfreeapis")
	params.AddMetadata("priceId", in.PriceID)
	if in.Email != "" {
		params.CustomerEmail = stripesdk.String(in.Email)
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		c.logger.ErrorContext(ctx, "checkout session creation failed", "price_id", in.PriceID, "error", err)
		return ports.CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	return ports.CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}
