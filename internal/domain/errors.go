package domain

import "errors"

var (
	// Authentication failures. Never retried by the sender.
	ErrMissingSignature  = errors.New("missing signature header")
	ErrMalformedHeader   = errors.New("malformed signature header")
	ErrStaleTimestamp    = errors.New("signature timestamp outside tolerance")
	ErrSignatureMismatch = errors.New("signature mismatch")

	// The raw body passed signature verification but is not a usable event.
	ErrMalformedPayload = errors.New("malformed event payload")

	// Operational misconfiguration, surfaced as 500.
	ErrSecretNotConfigured = errors.New("webhook secret not configured")

	// Downstream recording endpoint rejected or never received the record.
	// Surfaced as 500 so the sender redelivers the event.
	ErrSyncFailed = errors.New("record sync failed")

	ErrInvalidInput = errors.New("invalid input")
)
