package domain

// Source tags every record this pipeline emits so the downstream store can
// attribute rows to their origin.
const Source = "stripe-webhook"

// Unknown is substituted for string fields the upstream payload never
// provided. The downstream store has no optional-field handling, so fields
// are never null.
const Unknown = "unknown"

type PurchaseStatus string

const (
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseRenewed   PurchaseStatus = "renewed"
	PurchaseFailed    PurchaseStatus = "failed"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionUnpaid   SubscriptionStatus = "unpaid"
)

// ParseSubscriptionStatus constrains a processor-reported status to the
// closed set the downstream store accepts.
func ParseSubscriptionStatus(raw string) (SubscriptionStatus, bool) {
	switch SubscriptionStatus(raw) {
	case SubscriptionActive, SubscriptionCanceled, SubscriptionPastDue, SubscriptionUnpaid:
		return SubscriptionStatus(raw), true
	default:
		return "", false
	}
}

// Record is the closed set of normalized outputs the sync endpoint accepts.
// Records are write-once: constructed, sent, discarded. The eventId is the
// downstream idempotency key; this pipeline never filters on it.
type Record interface {
	Key() string
	isRecord()
}

type PurchaseRecord struct {
	EventID        string         `json:"eventId"`
	Email          string         `json:"email"`
	CustomerID     string         `json:"customerId"`
	SubscriptionID string         `json:"subscriptionId,omitempty"`
	PriceID        string         `json:"priceId"`
	Amount         int64          `json:"amount"`
	Currency       string         `json:"currency"`
	Status         PurchaseStatus `json:"status"`
	Timestamp      string         `json:"timestamp"`
	Source         string         `json:"source"`
}

func (r PurchaseRecord) Key() string { return r.EventID }
func (PurchaseRecord) isRecord()     {}

type SubscriptionUpdate struct {
	EventID        string             `json:"eventId"`
	SubscriptionID string             `json:"subscriptionId"`
	CustomerID     string             `json:"customerId"`
	Status         SubscriptionStatus `json:"status"`
	Timestamp      string             `json:"timestamp"`
	Source         string             `json:"source"`
}

func (r SubscriptionUpdate) Key() string { return r.EventID }
func (SubscriptionUpdate) isRecord()     {}
