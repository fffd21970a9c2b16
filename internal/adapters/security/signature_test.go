package security

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shipfreeapis/payment-pipeline/internal/domain"
)

const testSecret = "whsec_test_secret"

func TestVerifyValidSignature(t *testing.T) {
	v := NewVerifier(testSecret, 0)
	body := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	header := Sign(testSecret, time.Now(), body)
	if err := v.Verify(header, body); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerifyIsDeterministic(t *testing.T) {
	v := NewVerifier(testSecret, 0)
	body := []byte(`{"id":"evt_1","type":"x"}`)
	header := Sign(testSecret, time.Now(), body)

	for i := 0; i < 3; i++ {
		if err := v.Verify(header, body); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
}

func TestVerifyTamperedBody(t *testing.T) {
	v := NewVerifier(testSecret, 0)

	header := Sign(testSecret, time.Now(), []byte(`{"amount":100}`))
	err := v.Verify(header, []byte(`{"amount":9999}`))
	if !errors.Is(err, domain.ErrSignatureMismatch) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	v := NewVerifier(testSecret, 0)
	body := []byte(`{}`)

	header := Sign("whsec_other", time.Now(), body)
	if err := v.Verify(header, body); !errors.Is(err, domain.ErrSignatureMismatch) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}
}

func TestVerifyMissingHeader(t *testing.T) {
	v := NewVerifier(testSecret, 0)
	if err := v.Verify("", []byte(`{}`)); !errors.Is(err, domain.ErrMissingSignature) {
		t.Fatalf("expected missing signature, got %v", err)
	}
}

func TestVerifyBrokenHeaders(t *testing.T) {
	v := NewVerifier(testSecret, 0)
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	// Damaged v1 entries are dropped rather than rejected, so a header with
	// no decodable signature fails as a mismatch, not as malformed.
	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"no pairs", "garbage", domain.ErrMalformedHeader},
		{"bad timestamp", "t=notanumber,v1=deadbeef", domain.ErrMalformedHeader},
		{"no v1", "t=" + ts, domain.ErrSignatureMismatch},
		{"bad hex", "t=" + ts + ",v1=zzzz", domain.ErrSignatureMismatch},
	}
	for _, tc := range cases {
		if err := v.Verify(tc.header, []byte(`{}`)); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestVerifyStaleTimestamp(t *testing.T) {
	v := NewVerifier(testSecret, 0)
	body := []byte(`{}`)

	stale := Sign(testSecret, time.Now().Add(-10*time.Minute), body)
	if err := v.Verify(stale, body); !errors.Is(err, domain.ErrStaleTimestamp) {
		t.Fatalf("expected stale timestamp for old signature, got %v", err)
	}

	edge := Sign(testSecret, time.Now().Add(-4*time.Minute), body)
	if err := v.Verify(edge, body); err != nil {
		t.Fatalf("signature inside tolerance rejected: %v", err)
	}

	// Only lag counts against the replay bound; a sender clock slightly
	// ahead of ours still verifies.
	ahead := Sign(testSecret, time.Now().Add(time.Minute), body)
	if err := v.Verify(ahead, body); err != nil {
		t.Fatalf("forward clock skew rejected: %v", err)
	}
}

func TestVerifyAcceptsAnyMatchingV1(t *testing.T) {
	v := NewVerifier(testSecret, 0)
	body := []byte(`{"id":"evt_1"}`)

	good := Sign(testSecret, time.Now(), body)
	parts := strings.SplitN(good, ",v1=", 2)
	header := parts[0] + ",v1=deadbeef,v1=" + parts[1]
	if err := v.Verify(header, body); err != nil {
		t.Fatalf("expected any matching v1 to pass, got %v", err)
	}
}

func TestVerifyUnconfiguredSecret(t *testing.T) {
	v := NewVerifier("", 0)
	if v.Configured() {
		t.Fatal("expected empty secret to report unconfigured")
	}
	err := v.Verify(Sign(testSecret, time.Now(), []byte(`{}`)), []byte(`{}`))
	if !errors.Is(err, domain.ErrSecretNotConfigured) {
		t.Fatalf("expected secret-not-configured, got %v", err)
	}
}
