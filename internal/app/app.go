package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nileops/remit-console/internal/api"
	"github.com/nileops/remit-console/internal/api/handler"
	"github.com/nileops/remit-console/internal/api/middleware"
	"github.com/nileops/remit-console/internal/blob"
	"github.com/nileops/remit-console/internal/config"
	"github.com/nileops/remit-console/internal/db"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/idempotency"
	"github.com/nileops/remit-console/internal/observability"
	"github.com/nileops/remit-console/internal/reference"
	"github.com/nileops/remit-console/internal/repository"
	"github.com/nileops/remit-console/internal/service"
	"github.com/nileops/remit-console/internal/worker"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Run bootstraps the HTTP server and housekeeping worker, blocking until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	observability.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, db.WithMaxConns(cfg.DBMaxConns))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("schema applied")
	}

	redisClient, err := newRedisClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	repo := repository.NewRepository(pool)
	rates := repository.NewCachedRates(repo, redisClient, cfg.RateCacheTTL)

	signer, err := blob.NewSigner(cfg.ProofSigningKey)
	if err != nil {
		return fmt.Errorf("proof signer: %w", err)
	}
	objects := blob.NewPostgresStore(pool, signer, cfg.PublicBaseURL)

	refs, err := reference.New(cfg.TransferRefStrategy, orderRefWidth(cfg.TransferRefStrategy))
	if err != nil {
		return fmt.Errorf("order refs: %w", err)
	}

	audit := service.NewAuditService(repo, logger)
	pricing := service.NewPricingEngine(repo, service.NewRateResolver(rates)).
		WithDistinctCountries(cfg.RequireDistinctCountries)
	proofs := service.NewProofPipeline(objects, logger)
	transfers := service.NewTransferService(repo, pricing, proofs, objects, refs, audit, logger).
		WithProofURLTTL(cfg.ProofURLTTL)

	auth, err := middleware.NewAuth(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	idemStore := idempotency.NewStore(redisClient, repo, cfg.IdempotencyTTL)

	sweeper := worker.NewIdempotencySweeper(repo, cfg.IdempotencyTTL, logger)
	stopSweeper := sweeper.Run(ctx)

	router := api.NewRouter(cfg, logger, auth, idemStore, api.Dependencies{
		Clients:   service.NewClientService(repo, audit),
		Rates:     service.NewExchangeRateService(rates, audit),
		Transfers: transfers,
		Signer:    signer,
		Objects:   objects,
		Checks: map[string]handler.Check{
			"database": pool.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting",
			zap.String("port", cfg.HTTPPort),
			zap.String("ref_strategy", cfg.TransferRefStrategy),
			zap.Bool("distinct_countries", cfg.RequireDistinctCountries),
		)
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	stopSweeper()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}

func orderRefWidth(strategy string) int {
	if strategy == reference.StrategySequential {
		return domain.OrderRefSequenceWidth
	}
	return domain.OrderRefRandomWidth
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func newRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
