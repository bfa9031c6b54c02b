package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/metropass/settlement-engine/internal/application/services"
	"github.com/metropass/settlement-engine/internal/config"
	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
	"github.com/metropass/settlement-engine/internal/infrastructure/provider"
	"github.com/metropass/settlement-engine/internal/interfaces/rest"
	"github.com/metropass/settlement-engine/internal/interfaces/rest/handlers"
	"github.com/metropass/settlement-engine/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting settlement engine",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	catalogRepo := postgres.NewCatalogRepository(db)
	passengerRepo := postgres.NewPassengerRepository(db)
	walletRepo := postgres.NewWalletRepository(db)
	cartRepo := postgres.NewCartRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	coordinator := postgres.NewTransactionCoordinator(db)

	checkoutClient := provider.NewCheckoutClient(cfg.Provider)
	retryCheckoutClient := provider.NewRetryCheckoutClient(checkoutClient, cfg.Retry)
	verifier := provider.NewWebhookVerifier(cfg.Provider.WebhookSecret)

	catalogService := services.NewCatalogService(catalogRepo, passengerRepo, logger)
	walletService := services.NewWalletService(walletRepo, passengerRepo, logger)
	cartService := services.NewCartService(cartRepo, catalogRepo, passengerRepo, logger)
	checkoutService := services.NewCheckoutService(
		coordinator,
		cartRepo,
		catalogRepo,
		passengerRepo,
		retryCheckoutClient,
		cfg.Provider,
		logger,
	)
	settlementService := services.NewSettlementService(verifier, coordinator, logger)
	invoiceService := services.NewInvoiceService(invoiceRepo, passengerRepo, coordinator, logger)
	activationService := services.NewActivationService(coordinator, logger)
	receiptService := services.NewReceiptService(invoiceRepo, logger)

	h := handlers.NewHandlers(
		catalogService,
		walletService,
		cartService,
		checkoutService,
		settlementService,
		invoiceService,
		activationService,
		receiptService,
		logger,
	)

	e := rest.NewRouter(h, logger, cfg.Server.ReadTimeout)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	expiryWorker := worker.NewExpiryWorker(
		invoiceRepo,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		logger,
	)

	cartSweeper := worker.NewCartSweeper(cartRepo, cfg.Worker.Interval, logger)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go expiryWorker.Start(workerCtx)
	go cartSweeper.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
