package application

type Config struct {
	ServiceName string
	Version     string

	// Price IDs billed on a recurring schedule. Checkout sessions for these
	// run in subscription mode; everything else is a one-time payment.
	RecurringPriceIDs []string

	// BaseURL builds the default success/cancel redirect targets when the
	// caller does not supply its own.
	BaseURL string
}

type CreateCheckoutInput struct {
	PriceID    string `json:"priceId"`
	Email      string `json:"email,omitempty"`
	SuccessURL string `json:"successUrl,omitempty"`
	CancelURL  string `json:"cancelUrl,omitempty"`
}

type CheckoutSessionOutput struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}
