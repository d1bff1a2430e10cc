package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/promotion"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/shopify"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rules, err := loadPromotionRules(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load promotion rules: %w", err)
	}
	logger.Info().
		Str("bundle_unit_price", rules.BundleUnitPrice.StringFixed(2)).
		Strs("bundle_titles", rules.BundleTitles).
		Msg("promotion rules loaded")

	// Initialize the order ledger
	ledger := repository.NewNopLedgerRepository()
	if cfg.Database.Enabled {
		pool, err := database.Open(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize order ledger: %w", err)
		}
		defer pool.Close()

		ledger = repository.NewLedgerRepository(pool, logger)
	} else {
		logger.Info().Msg("order ledger disabled (DB_ENABLED=false)")
	}

	// Initialize platform clients
	shopifyCfg := shopify.Config{
		StoreDomain:     cfg.Shopify.StoreDomain,
		StorefrontToken: cfg.Shopify.StorefrontToken,
		AdminToken:      cfg.Shopify.AdminToken,
		APIVersion:      cfg.Shopify.APIVersion,
		DomainPolicy:    shopify.ParseDomainPolicy(cfg.Checkout.DomainPolicy),
	}
	httpClient := &http.Client{}
	storefront := shopify.NewClient(shopifyCfg, httpClient, logger)
	admin := shopify.NewAdminClient(shopifyCfg, httpClient, logger)
	logger.Info().
		Str("endpoint", storefront.Endpoint()).
		Str("domain_policy", shopifyCfg.DomainPolicy.String()).
		Msg("shopify clients configured")

	// Initialize services
	checkoutService := service.NewCheckoutService(storefront, ledger, logger)
	draftOrderService := service.NewDraftOrderService(admin, ledger, service.InvoiceSettings{
		MaxAttempts: cfg.Invoice.MaxAttempts,
		BaseDelay:   cfg.Invoice.BaseDelay,
		Recipient:   cfg.Invoice.Recipient,
	}, logger)
	productService := service.NewProductService(admin, storefront, catalog.NewParser(rules), logger)

	// Initialize HTTP handlers
	validate := handler.NewValidator()
	handlers := router.Handlers{
		Checkout: handler.NewCheckoutHandler(checkoutService, handler.CookieSettings{
			Name:   cfg.Checkout.CookieName,
			MaxAge: cfg.Checkout.CookieMaxAge,
			Secure: cfg.Checkout.CookieSecure,
		}, validate, logger),
		DraftOrder: handler.NewDraftOrderHandler(draftOrderService, validate, logger),
		Product:    handler.NewProductHandler(productService, logger),
	}

	// Initialize router
	mux := router.New(handlers, cfg.Auth.AdminAPIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// loadPromotionRules reads the rules document from S3 with a local fallback,
// or returns the built-in rules when no document is configured.
func loadPromotionRules(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*promotion.Rules, error) {
	if cfg.Promotion.RulesPath == "" {
		logger.Info().Msg("using built-in promotion rules")
		return promotion.NewStaticLoader(promotion.DefaultRules()).Load(ctx, "")
	}

	fileLoader := promotion.NewFileLoader(logger)
	var s3Loader promotion.Loader
	if cfg.S3.Enabled {
		loader, err := promotion.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = loader
		}
	} else {
		logger.Info().Msg("using local file system for promotion rules (S3 disabled)")
	}

	loader := promotion.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)
	return loader.Load(ctx, cfg.Promotion.RulesPath)
}
