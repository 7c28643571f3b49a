package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paypal-premium-service/internal/config"
	"paypal-premium-service/internal/domain/ports/repository"
	"paypal-premium-service/internal/infra/api"
	"paypal-premium-service/internal/infra/logging"
	"paypal-premium-service/internal/infra/metrics"
	mongostore "paypal-premium-service/internal/infra/mongo"
	"paypal-premium-service/internal/infra/paypal"
	pg "paypal-premium-service/internal/infra/postgres"
	red "paypal-premium-service/internal/infra/redis"
	"paypal-premium-service/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (verbose errors, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Mongo ----
	store, err := mongostore.NewStore(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer func() { _ = store.Close(context.Background()) }()
	if err := store.Ping(ctx); err != nil {
		log.Fatalf("mongo ping: %v", err)
	}
	userRepo := mongostore.NewUserRepo(store)

	// ---- Optional postgres ledger ----
	var ledger repository.EntitlementLogRepository
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		repo := pg.NewEntitlementLogRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("postgres schema: %v", err)
		}
		ledger = repo
		logger.Info().Msg("entitlement ledger enabled")
	}

	// ---- Optional redis ----
	var (
		dedup   repository.EventDeduper
		limiter *red.RateLimiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer func() { _ = redisClient.Close() }()
		dedup = red.NewEventDeduper(redisClient)
		limiter = red.NewRateLimiter(redisClient)
		logger.Info().Msg("redis dedup and rate limiting enabled")
	}

	// ---- Provider gateway ----
	gateway := paypal.NewClient(cfg.PayPal.ClientID, cfg.PayPal.ClientSecret, cfg.PayPal.BrandName, cfg.PayPal.Sandbox)
	if cfg.PayPal.WebhookID == "" {
		logger.Warn().Msg("paypal.webhook_id not set; /webhook will refuse deliveries")
	}

	// ---- Use cases ----
	entitlementUC := usecase.NewEntitlementUseCase(userRepo, ledger, dedup, logger)
	paymentUC := usecase.NewPaymentUseCase(gateway, userRepo, entitlementUC, logger)
	subUC := usecase.NewSubscriptionUseCase(gateway, cfg.Server.BaseURL, logger)
	userUC := usecase.NewUserUseCase(userRepo, entitlementUC, logger)
	authUC := usecase.NewAuthUseCase(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger)

	// ---- HTTP server ----
	srv := api.NewServer(cfg, gateway, paymentUC, subUC, userUC, authUC, entitlementUC, limiter, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
