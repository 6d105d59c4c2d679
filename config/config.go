package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"solotto/database"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP server configuration
	ListenAddr string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated)

	// Redis configuration (rate limiter)
	RedisAddr     string
	RedisPassword string

	// Solana configuration
	SolanaRPCEndpoint string
	// Base58-encoded 64-byte secret keys, one per payer account
	MonthlyPayerKey  string
	WeeklyPayerKey   string
	DailyPayerKey    string
	TreasuryPayerKey string
	// Collection wallets receiving ticket payments, one per tier
	MonthlyCollectionWallet string
	WeeklyCollectionWallet  string
	DailyCollectionWallet   string

	// Pricing configuration
	TicketPriceUsd       float64
	WorstCaseSolPriceUsd float64
	PriceEndpoint        string

	// Referral configuration
	OperatorReferralCode string

	// Purchase limits
	MaxTicketsPerPurchase int64
	LifetimeBonusCap      int64

	// Rate limiting
	RateLimitPerMinute int64

	// Worker intervals in seconds
	DrawSweepIntervalSeconds   int
	PayoutSweepIntervalSeconds int

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// Best effort; the environment may provide everything directly
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		ListenAddr: getEnvWithDefault("LISTEN_ADDR", ":8080"),

		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),

		RedisAddr:     getEnvWithDefault("REDIS_ADDR", "redis:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		SolanaRPCEndpoint: getEnvWithDefault("SOLANA_RPC_ENDPOINT", "https://api.mainnet-beta.solana.com"),
		MonthlyPayerKey:   os.Getenv("MONTHLY_PAYER_KEY"),
		WeeklyPayerKey:    os.Getenv("WEEKLY_PAYER_KEY"),
		DailyPayerKey:     os.Getenv("DAILY_PAYER_KEY"),
		TreasuryPayerKey:  os.Getenv("TREASURY_PAYER_KEY"),

		MonthlyCollectionWallet: os.Getenv("MONTHLY_COLLECTION_WALLET"),
		WeeklyCollectionWallet:  os.Getenv("WEEKLY_COLLECTION_WALLET"),
		DailyCollectionWallet:   os.Getenv("DAILY_COLLECTION_WALLET"),

		TicketPriceUsd:       1.0,
		WorstCaseSolPriceUsd: 1000.0,
		PriceEndpoint:        getEnvWithDefault("PRICE_ENDPOINT", "https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd"),

		OperatorReferralCode: getEnvWithDefault("OPERATOR_REFERRAL_CODE", "SOLOTTO"),

		MaxTicketsPerPurchase: 1000,
		LifetimeBonusCap:      2500,

		RateLimitPerMinute: 30,

		DrawSweepIntervalSeconds:   60,
		PayoutSweepIntervalSeconds: 30,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if price := os.Getenv("TICKET_PRICE_USD"); price != "" {
		if parsed, err := strconv.ParseFloat(price, 64); err == nil {
			config.TicketPriceUsd = parsed
		}
	}
	if price := os.Getenv("WORST_CASE_SOL_PRICE_USD"); price != "" {
		if parsed, err := strconv.ParseFloat(price, 64); err == nil {
			config.WorstCaseSolPriceUsd = parsed
		}
	}
	if limit := os.Getenv("MAX_TICKETS_PER_PURCHASE"); limit != "" {
		if parsed, err := strconv.ParseInt(limit, 10, 64); err == nil {
			config.MaxTicketsPerPurchase = parsed
		}
	}
	if bonusCap := os.Getenv("LIFETIME_BONUS_CAP"); bonusCap != "" {
		if parsed, err := strconv.ParseInt(bonusCap, 10, 64); err == nil {
			config.LifetimeBonusCap = parsed
		}
	}
	if limit := os.Getenv("RATE_LIMIT_PER_MINUTE"); limit != "" {
		if parsed, err := strconv.ParseInt(limit, 10, 64); err == nil {
			config.RateLimitPerMinute = parsed
		}
	}
	if interval := os.Getenv("DRAW_SWEEP_INTERVAL_SECONDS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil {
			config.DrawSweepIntervalSeconds = parsed
		}
	}
	if interval := os.Getenv("PAYOUT_SWEEP_INTERVAL_SECONDS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil {
			config.PayoutSweepIntervalSeconds = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
		for name, key := range map[string]string{
			"MONTHLY_PAYER_KEY":  config.MonthlyPayerKey,
			"WEEKLY_PAYER_KEY":   config.WeeklyPayerKey,
			"DAILY_PAYER_KEY":    config.DailyPayerKey,
			"TREASURY_PAYER_KEY": config.TreasuryPayerKey,
		} {
			if key == "" {
				return nil, fmt.Errorf("%s is required", name)
			}
		}
		for name, wallet := range map[string]string{
			"MONTHLY_COLLECTION_WALLET": config.MonthlyCollectionWallet,
			"WEEKLY_COLLECTION_WALLET":  config.WeeklyCollectionWallet,
			"DAILY_COLLECTION_WALLET":   config.DailyCollectionWallet,
		} {
			if wallet == "" {
				return nil, fmt.Errorf("%s is required", name)
			}
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:           "test",
		ListenAddr:            ":0",
		TicketPriceUsd:        1.0,
		WorstCaseSolPriceUsd:  1000.0,
		OperatorReferralCode:  "SOLOTTO",
		MaxTicketsPerPurchase: 1000,
		LifetimeBonusCap:      2500,
		RateLimitPerMinute:    30,
	}
}
