package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type EventType string

const (
	EventCheckoutCompleted   EventType = "checkout.session.completed"
	EventInvoicePaid         EventType = "invoice.payment_succeeded"
	EventInvoiceFailed       EventType = "invoice.payment_failed"
	EventSubscriptionDeleted EventType = "customer.subscription.deleted"
	EventSubscriptionUpdated EventType = "customer.subscription.updated"

	// EventUnrecognized covers types the processor may introduce later.
	// They are acknowledged as no-ops rather than rejected.
	EventUnrecognized EventType = "unrecognized"
)

// Event is the authenticated envelope handed to the pipeline. It is built
// once from the verified raw body, never mutated, and discarded after
// dispatch.
type Event struct {
	ID      string
	Type    EventType
	RawType string
	Payload EventPayload
}

// EventPayload is the closed set of per-type payload shapes. Adding an event
// kind means adding a variant here and a case to every dispatch switch; a
// missing case is a compile-time gap, not a silent fallthrough.
type EventPayload interface {
	isEventPayload()
}

// ExpandableID models upstream fields that arrive either as a bare string ID
// or as an expanded object carrying an "id" key. Some fallback rules depend
// on which form was seen, so that is preserved.
type ExpandableID struct {
	ID         string
	FromObject bool
}

func (e *ExpandableID) UnmarshalJSON(raw []byte) error {
	*e = ExpandableID{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '"':
		return json.Unmarshal(trimmed, &e.ID)
	case '{':
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		e.ID = obj.ID
		e.FromObject = true
		return nil
	default:
		// null, numbers, booleans: no usable ID. The value stays absent and
		// the normalizer's fallback chain takes over; failing the whole
		// event over one odd field would reject an authenticated delivery.
		return nil
	}
}

func (e ExpandableID) Present() bool { return e.ID != "" }

type CustomerDetails struct {
	Email string `json:"email"`
}

type CheckoutSession struct {
	SessionID       string            `json:"id"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerDetails *CustomerDetails  `json:"customer_details"`
	Customer        ExpandableID      `json:"customer"`
	Subscription    ExpandableID      `json:"subscription"`
	Metadata        map[string]string `json:"metadata"`
	AmountTotal     int64             `json:"amount_total"`
	Currency        string            `json:"currency"`
}

type Invoice struct {
	InvoiceID     string            `json:"id"`
	BillingReason string            `json:"billing_reason"`
	CustomerEmail string            `json:"customer_email"`
	Customer      ExpandableID      `json:"customer"`
	Metadata      map[string]string `json:"metadata"`
	Lines         InvoiceLines      `json:"lines"`
	AmountPaid    int64             `json:"amount_paid"`
	AmountDue     int64             `json:"amount_due"`
	Currency      string            `json:"currency"`
}

type InvoiceLines struct {
	Data []InvoiceLine `json:"data"`
}

type InvoiceLine struct {
	Parent  *InvoiceLineParent  `json:"parent"`
	Pricing *InvoiceLinePricing `json:"pricing"`
}

type InvoiceLineParent struct {
	SubscriptionItemDetails *SubscriptionItemDetails `json:"subscription_item_details"`
}

type SubscriptionItemDetails struct {
	Subscription string `json:"subscription"`
}

type InvoiceLinePricing struct {
	PriceDetails *PriceDetails `json:"price_details"`
}

type PriceDetails struct {
	Price ExpandableID `json:"price"`
}

type Subscription struct {
	SubscriptionID string       `json:"id"`
	Customer       ExpandableID `json:"customer"`
	Status         string       `json:"status"`
}

// UnknownPayload stands in for event types this pipeline does not handle.
type UnknownPayload struct{}

func (CheckoutSession) isEventPayload() {}
func (Invoice) isEventPayload()         {}
func (Subscription) isEventPayload()    {}
func (UnknownPayload) isEventPayload()  {}

type envelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes an already-verified raw body into a typed Event. The
// caller must have checked the signature over these exact bytes first;
// parsing never re-encodes the body.
func ParseEvent(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if strings.TrimSpace(env.ID) == "" || strings.TrimSpace(env.Type) == "" {
		return Event{}, fmt.Errorf("%w: missing event id or type", ErrMalformedPayload)
	}

	ev := Event{ID: env.ID, RawType: env.Type}
	switch EventType(env.Type) {
	case EventCheckoutCompleted:
		var p CheckoutSession
		if err := json.Unmarshal(env.Data.Object, &p); err != nil {
			return Event{}, fmt.Errorf("%w: checkout session object: %v", ErrMalformedPayload, err)
		}
		ev.Type, ev.Payload = EventCheckoutCompleted, p
	case EventInvoicePaid, EventInvoiceFailed:
		var p Invoice
		if err := json.Unmarshal(env.Data.Object, &p); err != nil {
			return Event{}, fmt.Errorf("%w: invoice object: %v", ErrMalformedPayload, err)
		}
		ev.Type, ev.Payload = EventType(env.Type), p
	case EventSubscriptionDeleted, EventSubscriptionUpdated:
		var p Subscription
		if err := json.Unmarshal(env.Data.Object, &p); err != nil {
			return Event{}, fmt.Errorf("%w: subscription object: %v", ErrMalformedPayload, err)
		}
		ev.Type, ev.Payload = EventType(env.Type), p
	default:
		ev.Type, ev.Payload = EventUnrecognized, UnknownPayload{}
	}
	return ev, nil
}
