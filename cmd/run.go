package cmd

import (
	"context"
	"fmt"
	"time"

	"solotto/application"
	"solotto/config"
	"solotto/database"
	"solotto/domain/interfaces"
	"solotto/infrastructure"
	"solotto/server"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting solotto settlement engine...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize NATS connection and event publisher
	log.Infof("Connecting to NATS at %s...", cfg.NATSServers)
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	subjectMapper := infrastructure.NewEventSubjectMapper()
	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, subjectMapper)
	if err := eventPublisher.EnsureLotteryEventStream(); err != nil {
		return fmt.Errorf("failed to ensure lottery event stream: %w", err)
	}
	log.Info("NATS event publisher initialized successfully")

	// Initialize Redis client for rate limiting
	log.Infof("Connecting to Redis at %s...", cfg.RedisAddr)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// The limiter fails open, so a Redis outage at startup is not fatal
		log.WithError(err).Warn("Redis ping failed, rate limiting will run degraded until Redis recovers")
	}
	rateLimiter := infrastructure.NewRedisRateLimiter(redisClient, "solotto:ratelimit", cfg.RateLimitPerMinute, time.Minute)

	// Initialize unit of work factory with transactional event publishing
	log.Info("Initializing unit of work factory...")
	uowFactory := infrastructure.NewUnitOfWorkFactoryWrapper(db, eventPublisher)
	log.Info("Unit of work factory initialized successfully")

	// Initialize Solana gateway with the per-tier payer keypairs
	log.Infof("Initializing Solana gateway against %s...", cfg.SolanaRPCEndpoint)
	chain, err := infrastructure.NewSolanaGateway(cfg.SolanaRPCEndpoint, map[string]string{
		interfaces.PayerMonthly:  cfg.MonthlyPayerKey,
		interfaces.PayerWeekly:   cfg.WeeklyPayerKey,
		interfaces.PayerDaily:    cfg.DailyPayerKey,
		interfaces.PayerTreasury: cfg.TreasuryPayerKey,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Solana gateway: %w", err)
	}
	for _, payer := range []string{interfaces.PayerMonthly, interfaces.PayerWeekly, interfaces.PayerDaily, interfaces.PayerTreasury} {
		wallet, err := chain.PayerWallet(payer)
		if err != nil {
			return fmt.Errorf("failed to resolve payer wallet: %w", err)
		}
		log.WithFields(log.Fields{"payer": payer, "wallet": wallet}).Info("Registered payer account")
	}
	log.Info("Solana gateway initialized successfully")

	// Initialize price oracle
	priceSource := infrastructure.NewPriceOracle(cfg.PriceEndpoint, time.Minute, cfg.WorstCaseSolPriceUsd)

	// Start background sweep workers
	log.Info("Starting sweep workers...")
	drawWorker := application.NewDrawSweepWorker(uowFactory, time.Duration(cfg.DrawSweepIntervalSeconds)*time.Second)
	payoutWorker := application.NewPayoutSweepWorker(uowFactory, chain, eventPublisher, time.Duration(cfg.PayoutSweepIntervalSeconds)*time.Second, 50)
	stopDrawWorker := drawWorker.Start(ctx)
	stopPayoutWorker := payoutWorker.Start(ctx)
	log.Info("Sweep workers started successfully")

	// Initialize HTTP server
	srv := server.New(cfg, uowFactory, chain, priceSource, rateLimiter, eventPublisher, drawWorker, payoutWorker)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	// Wait for context cancellation or a server failure
	log.Infof("Settlement engine is running in %s mode...", cfg.Environment)
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	stopDrawWorker()
	stopPayoutWorker()

	if err := natsClient.Close(); err != nil {
		log.WithError(err).Error("Error closing NATS connection")
	}
	if err := redisClient.Close(); err != nil {
		log.WithError(err).Error("Error closing Redis client")
	}

	// Close database connection
	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
