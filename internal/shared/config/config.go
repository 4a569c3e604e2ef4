// Package config loads runtime settings from the environment (and an optional .env file).
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds every knob the server reads at start-up.
type Config struct {
	HTTPAddr       string
	Store          string // "postgres" or "memory"
	SeedFile       string // users and sneakers for the memory store
	MigrationsPath string

	DB DBConfig

	PaymentWindow         time.Duration
	BidMaxAttempts        int
	SchedulerRetryBackoff time.Duration
	DefaultMinIncrement   decimal.Decimal

	EligibleMinPrice  decimal.Decimal
	EligibleCondition string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	NatsURL       string
}

// DBConfig are the Postgres connection settings.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	HealthCheckPeriod time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenv(key string, def time.Duration) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func decenv(key string, def int64) decimal.Decimal {
	v := getenv(key, "")
	if v == "" {
		return decimal.NewFromInt(def)
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NewFromInt(def)
	}
	return d
}

// Load reads .env (if present) and then the process environment, applying defaults.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		HTTPAddr:       getenv("HTTP_ADDR", ":9000"),
		Store:          getenv("STORE", "postgres"),
		SeedFile:       getenv("SEED_FILE", ""),
		MigrationsPath: getenv("MIGRATIONS_PATH", "file://internal/shared/db/migrations/sql"),
		DB: DBConfig{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			User:     getenv("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD", ""),
			Name:     getenv("DB_NAME", "sneakerbid"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),

			MaxConns:          int32(atoienv("DB_MAX_CONNS", 10)),
			MinConns:          int32(atoienv("DB_MIN_CONNS", 2)),
			MaxConnLifetime:   durenv("DB_MAX_CONN_LIFETIME", time.Hour),
			HealthCheckPeriod: durenv("DB_HEALTH_CHECK_PERIOD", time.Minute),
		},
		PaymentWindow:         durenv("PAYMENT_WINDOW", 24*time.Hour),
		BidMaxAttempts:        atoienv("BID_MAX_ATTEMPTS", 5),
		SchedulerRetryBackoff: durenv("SCHEDULER_RETRY_BACKOFF", 2*time.Second),
		DefaultMinIncrement:   decenv("DEFAULT_MIN_INCREMENT", 100),
		EligibleMinPrice:      decenv("ELIGIBLE_MIN_PRICE", 6000),
		EligibleCondition:     getenv("ELIGIBLE_CONDITION", "best"),
		RedisAddr:             getenv("REDIS_ADDR", ""),
		RedisPassword:         getenv("REDIS_PASSWORD", ""),
		RedisDB:               atoienv("REDIS_DB", 0),
		NatsURL:               getenv("NATS_URL", ""),
	}
}
