package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	transporthttp "github.com/shipfreeapis/payment-pipeline/internal/adapters/http"
	"github.com/shipfreeapis/payment-pipeline/internal/adapters/security"
	"github.com/shipfreeapis/payment-pipeline/internal/adapters/sheets"
	stripeadapter "github.com/shipfreeapis/payment-pipeline/internal/adapters/stripe"
	"github.com/shipfreeapis/payment-pipeline/internal/application"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping payment pipeline", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	if cfg.WebhookSecret == "" {
		logger.Warn("webhook secret not configured, deliveries will be rejected with 500")
	}
	if cfg.SyncEndpointURL == "" {
		logger.Warn("sync endpoint not configured, normalized records cannot be forwarded")
	}

	verifier := security.NewVerifier(cfg.WebhookSecret, cfg.SignatureTolerance)
	sink := sheets.NewClient(cfg.SyncEndpointURL, cfg.SyncTimeout, logger)
	checkout := stripeadapter.NewCheckoutClient(cfg.StripeSecretKey, logger)

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:       cfg.ServiceID,
			Version:           cfg.Version,
			RecurringPriceIDs: cfg.RecurringPriceIDs,
			BaseURL:           cfg.BaseURL,
		},
		Sink:     sink,
		Checkout: checkout,
		Logger:   logger,
	})

	handler := transporthttp.NewHandler(svc, verifier)
	router := transporthttp.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
	}, nil
}

func (r *Runtime) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	return nil
}
