package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

const (
	TransportDiscord  = "discord"
	TransportTelegram = "telegram"

	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
	StorageDriverFile     = "file"
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	Transport     string
	DiscordToken  string
	TelegramToken string

	StorageDriver string
	DatabaseURL   string // postgres
	StoragePath   string // sqlite and file
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel    string
	Environment string

	CronSpecDaily    string // Daily birthday sweep
	Location         *time.Location
	DispatchTimeout  time.Duration
	SweepConcurrency int
	ConsoleEnabled   bool
}

// Load reads configuration from environment variables and the given .env
// files (or ./.env when none are given). Missing files are ignored;
// godotenv.Load never overrides variables that are already set.
func Load(envFiles ...string) (*AppConfig, error) {
	_ = godotenv.Load(envFiles...)

	cfg := &AppConfig{}
	var err error

	cfg.Transport = strings.ToLower(envOr("TRANSPORT", TransportDiscord))
	switch cfg.Transport {
	case TransportDiscord:
		cfg.DiscordToken = os.Getenv("DISCORD_TOKEN")
		if cfg.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is not set")
		}
	case TransportTelegram:
		cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
		if cfg.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
		}
	default:
		return nil, fmt.Errorf("invalid TRANSPORT %q: expected %q or %q", cfg.Transport, TransportDiscord, TransportTelegram)
	}

	cfg.StorageDriver = strings.ToLower(envOr("STORAGE_DRIVER", StorageDriverFile))
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case StorageDriverSQLite:
		cfg.StoragePath = envOr("STORAGE_PATH", "data/birthdays.db")
	case StorageDriverFile:
		cfg.StoragePath = envOr("STORAGE_PATH", "data/birthdays.json")
	case StorageDriverMemory:
	case StorageDriverRedis:
		cfg.RedisAddr = envOr("REDIS_ADDR", "localhost:6379")
		cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
		cfg.RedisDB, err = strconv.Atoi(envOr("REDIS_DB", "0"))
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	cfg.LogLevel = strings.ToLower(envOr("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(envOr("ENVIRONMENT", "development"))

	cfg.CronSpecDaily = envOr("CRON_SPEC_DAILY", "0 0 * * *") // Default: midnight

	tz := envOr("TIMEZONE", "America/New_York")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	cfg.DispatchTimeout, err = time.ParseDuration(envOr("DISPATCH_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPATCH_TIMEOUT: %w", err)
	}
	if cfg.DispatchTimeout <= 0 {
		return nil, fmt.Errorf("DISPATCH_TIMEOUT must be positive")
	}

	cfg.SweepConcurrency, err = strconv.Atoi(envOr("SWEEP_CONCURRENCY", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_CONCURRENCY: %w", err)
	}
	if cfg.SweepConcurrency < 1 {
		return nil, fmt.Errorf("SWEEP_CONCURRENCY must be at least 1")
	}

	cfg.ConsoleEnabled, err = strconv.ParseBool(envOr("CONSOLE_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONSOLE_ENABLED: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Now returns the current time in the configured location.
func (c *AppConfig) Now() time.Time {
	return time.Now().In(c.Location)
}
