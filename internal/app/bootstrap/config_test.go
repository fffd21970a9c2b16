package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ServiceID != "payment-pipeline" {
		t.Errorf("ServiceID = %q", cfg.ServiceID)
	}
	if cfg.HTTPPort != 8080 || cfg.GRPCPort != 9090 {
		t.Errorf("ports = %d/%d", cfg.HTTPPort, cfg.GRPCPort)
	}
	if cfg.SignatureTolerance != 5*time.Minute {
		t.Errorf("SignatureTolerance = %v", cfg.SignatureTolerance)
	}
	if cfg.SyncTimeout != 10*time.Second {
		t.Errorf("SyncTimeout = %v", cfg.SyncTimeout)
	}
	if cfg.BaseURL != "http://localhost:3000" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.WebhookSecret != "" || cfg.SyncEndpointURL != "" {
		t.Errorf("secrets should be empty by default")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
service:
  id: payments-test
  version: 1.2.3
  http_port: 8181
payments:
  webhook_secret: whsec_file
  secret_key: sk_file
  recurring_price_ids:
    - price_a
    - price_b
  signature_tolerance_seconds: 120
sync:
  endpoint_url: https://sheets.example/api
  timeout_seconds: 4
site:
  base_url: https://shipfree.example
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ServiceID != "payments-test" || cfg.Version != "1.2.3" {
		t.Errorf("service = %q %q", cfg.ServiceID, cfg.Version)
	}
	if cfg.HTTPPort != 8181 {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.GRPCPort != 9090 {
		t.Errorf("GRPCPort should keep default, got %d", cfg.GRPCPort)
	}
	if cfg.WebhookSecret != "whsec_file" || cfg.StripeSecretKey != "sk_file" {
		t.Errorf("secrets = %q %q", cfg.WebhookSecret, cfg.StripeSecretKey)
	}
	if len(cfg.RecurringPriceIDs) != 2 || cfg.RecurringPriceIDs[1] != "price_b" {
		t.Errorf("RecurringPriceIDs = %v", cfg.RecurringPriceIDs)
	}
	if cfg.SignatureTolerance != 2*time.Minute {
		t.Errorf("SignatureTolerance = %v", cfg.SignatureTolerance)
	}
	if cfg.SyncEndpointURL != "https://sheets.example/api" || cfg.SyncTimeout != 4*time.Second {
		t.Errorf("sync = %q %v", cfg.SyncEndpointURL, cfg.SyncTimeout)
	}
	if cfg.BaseURL != "https://shipfree.example" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("payments:\n  webhook_secret: whsec_file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_env")
	t.Setenv("SYNC_ENDPOINT_URL", "https://env.example/sync")
	t.Setenv("SYNC_TIMEOUT_SECONDS", "3")
	t.Setenv("BASE_URL", "https://env.example/")
	t.Setenv("RECURRING_PRICE_IDS", "price_x, price_y,,price_z")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPPort != 9999 {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.WebhookSecret != "whsec_env" {
		t.Errorf("env secret should win over file, got %q", cfg.WebhookSecret)
	}
	if cfg.SyncEndpointURL != "https://env.example/sync" || cfg.SyncTimeout != 3*time.Second {
		t.Errorf("sync = %q %v", cfg.SyncEndpointURL, cfg.SyncTimeout)
	}
	if cfg.BaseURL != "https://env.example" {
		t.Errorf("trailing slash should be trimmed, got %q", cfg.BaseURL)
	}
	want := []string{"price_x", "price_y", "price_z"}
	if len(cfg.RecurringPriceIDs) != len(want) {
		t.Fatalf("RecurringPriceIDs = %v", cfg.RecurringPriceIDs)
	}
	for i, id := range want {
		if cfg.RecurringPriceIDs[i] != id {
			t.Errorf("RecurringPriceIDs[%d] = %q, want %q", i, cfg.RecurringPriceIDs[i], id)
		}
	}
}

func TestLoadConfigUnreadablePath(t *testing.T) {
	// A directory is readable as a path but not as a file; unlike an absent
	// file it must not silently degrade to defaults.
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatal("expected error for unreadable config path")
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("service: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
