package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string
	Version   string
	HTTPPort  int
	GRPCPort  int

	// WebhookSecret authenticates inbound deliveries. An empty value is an
	// operational misconfiguration: the webhook endpoint answers 500.
	WebhookSecret      string
	StripeSecretKey    string
	RecurringPriceIDs  []string
	SignatureTolerance time.Duration

	SyncEndpointURL string
	SyncTimeout     time.Duration

	BaseURL string
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		Version  string `yaml:"version"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Payments struct {
		WebhookSecret             string   `yaml:"webhook_secret"`
		SecretKey                 string   `yaml:"secret_key"`
		RecurringPriceIDs         []string `yaml:"recurring_price_ids"`
		SignatureToleranceSeconds int      `yaml:"signature_tolerance_seconds"`
	} `yaml:"payments"`
	Sync struct {
		EndpointURL    string `yaml:"endpoint_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"sync"`
	Site struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"site"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:          "payment-pipeline",
		Version:            "0.1.0",
		HTTPPort:           8080,
		GRPCPort:           9090,
		SignatureTolerance: 5 * time.Minute,
		SyncTimeout:        10 * time.Second,
		BaseURL:            "http://localhost:3000",
	}
	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		// An absent file means defaults plus env; anything else (permissions,
		// a directory) is a deployment fault worth failing on.
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		var f configFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.Version != "" {
			cfg.Version = f.Service.Version
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Payments.WebhookSecret != "" {
			cfg.WebhookSecret = f.Payments.WebhookSecret
		}
		if f.Payments.SecretKey != "" {
			cfg.StripeSecretKey = f.Payments.SecretKey
		}
		if len(f.Payments.RecurringPriceIDs) > 0 {
			cfg.RecurringPriceIDs = f.Payments.RecurringPriceIDs
		}
		if f.Payments.SignatureToleranceSeconds > 0 {
			cfg.SignatureTolerance = time.Duration(f.Payments.SignatureToleranceSeconds) * time.Second
		}
		if f.Sync.EndpointURL != "" {
			cfg.SyncEndpointURL = f.Sync.EndpointURL
		}
		if f.Sync.TimeoutSeconds > 0 {
			cfg.SyncTimeout = time.Duration(f.Sync.TimeoutSeconds) * time.Second
		}
		if f.Site.BaseURL != "" {
			cfg.BaseURL = f.Site.BaseURL
		}
	}

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.Version = envString("SERVICE_VERSION", cfg.Version)
	cfg.WebhookSecret = envString("STRIPE_WEBHOOK_SECRET", cfg.WebhookSecret)
	cfg.StripeSecretKey = envString("STRIPE_SECRET_KEY", cfg.StripeSecretKey)
	cfg.SyncEndpointURL = envString("SYNC_ENDPOINT_URL", cfg.SyncEndpointURL)
	cfg.SyncTimeout = time.Duration(envInt("SYNC_TIMEOUT_SECONDS", int(cfg.SyncTimeout.Seconds()))) * time.Second
	cfg.BaseURL = strings.TrimSuffix(envString("BASE_URL", cfg.BaseURL), "/")
	if raw := os.Getenv("RECURRING_PRICE_IDS"); raw != "" {
		cfg.RecurringPriceIDs = splitList(raw)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(name string, fallback int) int {
	if raw := os.Getenv(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func envString(name, fallback string) string {
	if raw := os.Getenv(name); raw != "" {
		return raw
	}
	return fallback
}
