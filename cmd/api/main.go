package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cashfree-checkout/config"
	"cashfree-checkout/internal/adapter/gateway/cashfree"
	httpHandler "cashfree-checkout/internal/adapter/http/handler"
	pgStorage "cashfree-checkout/internal/adapter/storage/postgres"
	redisStorage "cashfree-checkout/internal/adapter/storage/redis"
	"cashfree-checkout/internal/core/ports"
	"cashfree-checkout/internal/service"
	"cashfree-checkout/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Bool("test_mode", cfg.Cashfree.TestMode).
		Msg("Starting Cashfree Checkout")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	invoiceRepo := pgStorage.NewInvoiceRepo(pool)
	productRepo := pgStorage.NewProductRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	eventRepo := pgStorage.NewGatewayEventRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	dedupeStore := redisStorage.NewDedupeStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize gateway client
	creds := cashfree.ResolveCredentials(cfg.Cashfree)
	gatewayClient := cashfree.NewClient(creds, cfg.Cashfree.APIVersion, &http.Client{Timeout: 10 * time.Second}, log)

	// Webhook signatures are computed with the API secret of the active mode.
	sigSvc := service.NewHMACSignatureService(creds.SecretKey)

	routes := httpHandler.NewRoutes(cfg.App.BaseURL)

	// Initialize business services
	recorder := service.NewPaymentRecorder(transactor, txRepo, invoiceRepo, log)
	checkoutSvc := service.NewCheckoutService(
		invoiceRepo,
		productRepo,
		gatewayClient,
		routes,
		cfg.Cashfree.EnableCartDetails,
		creds.TestMode,
		log,
	)
	webhookSvc := service.NewWebhookService(sigSvc, dedupeStore, invoiceRepo, txRepo, eventRepo, recorder, log)
	reconcileSvc := service.NewReconcileService(invoiceRepo, txRepo, gatewayClient, eventRepo, recorder, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		CheckoutSvc:    checkoutSvc,
		WebhookSvc:     webhookSvc,
		ReconcileSvc:   reconcileSvc,
		Routes:         routes,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
