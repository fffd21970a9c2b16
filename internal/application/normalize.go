package application

import (
	"github.com/shipfreeapis/payment-pipeline/internal/domain"
)

const (
	billingReasonSubscriptionCycle = "subscription_cycle"

	// Currency keeps an ISO code even when absent upstream; "unknown" would
	// not be one.
	defaultCurrency = "usd"
)

// stringSource yields a candidate value for a field that can live in more
// than one place in the upstream payload, depending on API version and
// event subtype.
type stringSource func() (string, bool)

// resolveString walks candidates in order and takes the first present value.
// Payloads can legitimately populate several candidates with different
// values during processor migrations, so the order is the contract: an
// earlier candidate always beats a later one.
func resolveString(fallback string, sources ...stringSource) string {
	for _, source := range sources {
		if v, ok := source(); ok {
			return v
		}
	}
	return fallback
}

func fromString(v string) stringSource {
	return func() (string, bool) { return v, v != "" }
}

// clampAmount keeps the downstream non-negative integer invariant even for
// absent or malformed upstream amounts.
func clampAmount(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func normalizeCheckoutCompleted(eventID string, session domain.CheckoutSession, timestamp string) domain.PurchaseRecord {
	return domain.PurchaseRecord{
		EventID: eventID,
		Email: resolveString(domain.Unknown,
			fromString(session.CustomerEmail),
			func() (string, bool) {
				if session.CustomerDetails == nil {
					return "", false
				}
				return session.CustomerDetails.Email, session.CustomerDetails.Email != ""
			},
		),
		CustomerID:     resolveString(domain.Unknown, fromString(session.Customer.ID)),
		SubscriptionID: resolveString("", fromString(session.Subscription.ID)),
		PriceID:        resolveString(domain.Unknown, fromString(session.Metadata["priceId"])),
		Amount:         clampAmount(session.AmountTotal),
		Currency:       resolveString(defaultCurrency, fromString(session.Currency)),
		Status:         domain.PurchaseCompleted,
		Timestamp:      timestamp,
		Source:         domain.Source,
	}
}

// normalizeInvoice covers both renewals (amount_paid) and payment failures
// (amount_due); the caller picks status and amount, which are distinct
// upstream fields and must not be confused.
func normalizeInvoice(eventID string, inv domain.Invoice, status domain.PurchaseStatus, amount int64, timestamp string) domain.PurchaseRecord {
	return domain.PurchaseRecord{
		EventID:    eventID,
		Email:      resolveString(domain.Unknown, fromString(inv.CustomerEmail)),
		CustomerID: resolveString(domain.Unknown, invoiceCustomer(inv)),
		SubscriptionID: resolveString("",
			invoiceLineSubscription(inv),
			fromString(inv.Metadata["subscription_id"]),
		),
		PriceID:   resolveString(domain.Unknown, invoiceLinePrice(inv)),
		Amount:    clampAmount(amount),
		Currency:  resolveString(defaultCurrency, fromString(inv.Currency)),
		Status:    status,
		Timestamp: timestamp,
		Source:    domain.Source,
	}
}

func normalizeSubscription(eventID string, sub domain.Subscription, status domain.SubscriptionStatus, timestamp string) domain.SubscriptionUpdate {
	return domain.SubscriptionUpdate{
		EventID:        eventID,
		SubscriptionID: resolveString(domain.Unknown, fromString(sub.SubscriptionID)),
		CustomerID:     resolveString(domain.Unknown, fromString(sub.Customer.ID)),
		Status:         status,
		Timestamp:      timestamp,
		Source:         domain.Source,
	}
}

func invoiceLineSubscription(inv domain.Invoice) stringSource {
	return func() (string, bool) {
		if len(inv.Lines.Data) == 0 {
			return "", false
		}
		line := inv.Lines.Data[0]
		if line.Parent == nil || line.Parent.SubscriptionItemDetails == nil {
			return "", false
		}
		sub := line.Parent.SubscriptionItemDetails.Subscription
		return sub, sub != ""
	}
}

func invoiceLinePrice(inv domain.Invoice) stringSource {
	return func() (string, bool) {
		if len(inv.Lines.Data) == 0 {
			return "", false
		}
		line := inv.Lines.Data[0]
		if line.Pricing == nil || line.Pricing.PriceDetails == nil {
			return "", false
		}
		price := line.Pricing.PriceDetails.Price.ID
		return price, price != ""
	}
}

// invoiceCustomer only trusts the bare string form of the customer field;
// an expanded object on an invoice is not used for identification.
func invoiceCustomer(inv domain.Invoice) stringSource {
	return func() (string, bool) {
		if inv.Customer.FromObject {
			return "", false
		}
		return inv.Customer.ID, inv.Customer.ID != ""
	}
}
