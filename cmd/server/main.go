package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dunelark/storefront/internal"
	"github.com/dunelark/storefront/internal/email"
	"github.com/dunelark/storefront/internal/events"
	"github.com/dunelark/storefront/internal/handler"
	"github.com/dunelark/storefront/internal/postgres"
	"github.com/dunelark/storefront/internal/repository"
	"github.com/dunelark/storefront/internal/router"
	"github.com/dunelark/storefront/internal/service"
	"github.com/dunelark/storefront/internal/shipping"
	"github.com/dunelark/storefront/internal/telemetry"
	"github.com/dunelark/storefront/internal/worker"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Run migrations over a short-lived database/sql connection
	logger.Info("Running database migrations...")
	sqlDB, err := sql.Open("postgres", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	if err := internal.RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return fmt.Errorf("migration failed: %w", err)
	}
	sqlDB.Close()
	logger.Info("Database migrations completed")

	// Initialize pgx connection pool for the application
	pool, err := postgres.NewPool(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()
	logger.Info("Database connection established")

	store := repository.NewStore(pool)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	businessMetrics := telemetry.NewBusinessMetrics(registry)

	// Event publisher: NATS when configured, otherwise a no-op
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher = natsPublisher
		logger.Info("NATS event publisher connected", "url", cfg.NATS.URL)
	}
	defer publisher.Close()

	// Shipping policy
	quoter := shipping.NewThresholdQuoter(cfg.Shipping.FreeThresholdCents, cfg.Shipping.FlatRateCents)

	// Services
	cartService := service.NewCartService(store, businessMetrics)
	couponService := service.NewCouponService(store)
	invoiceService := service.NewInvoiceService(store, businessMetrics)
	orderService := service.NewOrderService(store, quoter, couponService, publisher, businessMetrics, logger)

	// Email delivery
	sender := email.NewSMTPSender(&email.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     int(cfg.Email.Port),
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	}, logger)
	emailService := email.NewService(sender, cfg.Email.From, cfg.Email.FromName)

	// Outbox worker
	outboxWorker := worker.NewWorker(store, emailService, worker.Config{
		PollInterval:   cfg.Worker.PollInterval,
		MaxConcurrency: cfg.Worker.MaxConcurrency,
	}, logger)
	go func() {
		if err := outboxWorker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	}()

	// HTTP
	e := router.New(router.Handlers{
		Cart:    handler.NewCartHandler(cartService, logger),
		Coupon:  handler.NewCouponHandler(couponService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Invoice: handler.NewInvoiceHandler(invoiceService, orderService, logger),
		Health:  handler.NewHealthHandler(pool),
	}, logger, registry)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
