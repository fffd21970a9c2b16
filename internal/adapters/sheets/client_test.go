package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shipfreeapis/payment-pipeline/internal/domain"
)

func testRecord() domain.PurchaseRecord {
	return domain.PurchaseRecord{
		EventID:   "evt_1",
		Email:     "a@b.com",
		Amount:    2499,
		Currency:  "usd",
		Status:    domain.PurchaseCompleted,
		Timestamp: "2026-01-15T12:00:00Z",
		Source:    domain.Source,
	}
}

func TestRecordSuccess(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	if err := c.Record(context.Background(), testRecord()); err != nil {
		t.Fatalf("record: %v", err)
	}
	if received["eventId"] != "evt_1" || received["amount"] != float64(2499) {
		t.Fatalf("unexpected payload: %v", received)
	}
	if _, present := received["subscriptionId"]; present {
		t.Fatalf("empty subscriptionId must be omitted: %v", received)
	}
}

func TestRecordNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	err := c.Record(context.Background(), testRecord())
	if !errors.Is(err, domain.ErrSyncFailed) {
		t.Fatalf("expected sync failure for 503, got %v", err)
	}
}

func TestRecordSuccessFalseIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "duplicate eventId"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	err := c.Record(context.Background(), testRecord())
	if !errors.Is(err, domain.ErrSyncFailed) {
		t.Fatalf("expected sync failure, got %v", err)
	}
}

func TestRecordTransportErrorIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, time.Second, nil)
	if err := c.Record(context.Background(), testRecord()); !errors.Is(err, domain.ErrSyncFailed) {
		t.Fatalf("expected sync failure, got %v", err)
	}
}

func TestRecordTimeoutIsFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	c := NewClient(srv.URL, 50*time.Millisecond, nil)
	if err := c.Record(context.Background(), testRecord()); !errors.Is(err, domain.ErrSyncFailed) {
		t.Fatalf("expected sync failure on timeout, got %v", err)
	}
}

func TestRecordUnconfiguredEndpoint(t *testing.T) {
	c := NewClient("", time.Second, nil)
	if err := c.Record(context.Background(), testRecord()); !errors.Is(err, domain.ErrSyncFailed) {
		t.Fatalf("expected sync failure without endpoint, got %v", err)
	}
}
