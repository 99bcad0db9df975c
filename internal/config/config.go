package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort string

	// Billing
	ReminderCap              int           // hard cap on generated reminders per plan
	DefaultCustomDays        int           // CUSTOM frequency step when the plan has none
	SweepInterval            time.Duration // gap between expiration sweeps
	RecentPaymentsLimit      int           // payments returned by the financial report
	TopMenteesLimit          int           // default group-by limit for top mentees
	PaymentHistoryLimit      int           // default page size for payment history
	StatsCacheTTL            time.Duration // mentor stats counter cache lifetime
	ChargeReminderTaskDelay  time.Duration // delay before a charge reminder dispatch runs
	ExpirationSweepQueueName string

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode,
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "mentorbilling")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@medbrave.example.com")
	cfg.ExpirationSweepQueueName = getEnv("SWEEP_QUEUE_NAME", "default")

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtTTLSeconds, err := strconv.ParseInt(getEnv("JWT_TTL_SECONDS", "3600"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_SECONDS: %w", err)
	}
	cfg.JwtTTL = time.Duration(jwtTTLSeconds) * time.Second

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg.ReminderCap, err = strconv.Atoi(getEnv("REMINDER_CAP", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_CAP: %w", err)
	}

	cfg.DefaultCustomDays, err = strconv.Atoi(getEnv("DEFAULT_CUSTOM_FREQUENCY_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_CUSTOM_FREQUENCY_DAYS: %w", err)
	}

	sweepIntervalSeconds, err := strconv.ParseInt(getEnv("SWEEP_INTERVAL_SECONDS", "86400"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL_SECONDS: %w", err)
	}
	cfg.SweepInterval = time.Duration(sweepIntervalSeconds) * time.Second

	cfg.RecentPaymentsLimit, err = strconv.Atoi(getEnv("RECENT_PAYMENTS_LIMIT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECENT_PAYMENTS_LIMIT: %w", err)
	}

	cfg.TopMenteesLimit, err = strconv.Atoi(getEnv("TOP_MENTEES_LIMIT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOP_MENTEES_LIMIT: %w", err)
	}

	cfg.PaymentHistoryLimit, err = strconv.Atoi(getEnv("PAYMENT_HISTORY_LIMIT", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_HISTORY_LIMIT: %w", err)
	}

	statsCacheTTLSeconds, err := strconv.ParseInt(getEnv("STATS_CACHE_TTL_SECONDS", "60"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_CACHE_TTL_SECONDS: %w", err)
	}
	cfg.StatsCacheTTL = time.Duration(statsCacheTTLSeconds) * time.Second

	chargeDelaySeconds, err := strconv.ParseInt(getEnv("CHARGE_REMINDER_TASK_DELAY_SECONDS", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CHARGE_REMINDER_TASK_DELAY_SECONDS: %w", err)
	}
	cfg.ChargeReminderTaskDelay = time.Duration(chargeDelaySeconds) * time.Second

	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}

	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	if cfg.ReminderCap <= 0 {
		return nil, fmt.Errorf("REMINDER_CAP must be positive, got %d", cfg.ReminderCap)
	}

	return cfg, nil
}
