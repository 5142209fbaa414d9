package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Lock backends.
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

// Config holds application configuration shared by both services.
// Each binary reads the fields it needs.
type Config struct {
	ServiceName    string
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	MigrationsPath string

	// Remote stock ledger
	ProductServiceURL  string
	StockClientTimeout time.Duration

	// Product locking
	LockBackend   string
	LockTTL       time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Reconciliation of pending stock adjustments
	ReconcileInterval    time.Duration
	ReconcileGrace       time.Duration
	ReconcileBatchSize   int
	ReconcileMaxAttempts int

	// HTTP surface
	RateLimit          string
	CORSAllowedOrigins []string

	// Telemetry
	OTelEnabled  bool
	OTelEndpoint string
}

// LoadConfig loads configuration from environment variables and .env file if present.
// serviceName selects defaults (port, migrations) for the binary being started.
func LoadConfig(serviceName string) (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	defaultPort, defaultMigrations := "8082", "file://migrations/transaction_service"
	if serviceName == "product-service" {
		defaultPort, defaultMigrations = "8081", "file://migrations/product_service"
	}

	viper.SetDefault("SERVICE_NAME", serviceName)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", defaultPort)
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", true)
	viper.SetDefault("MIGRATIONS_PATH", defaultMigrations)
	viper.SetDefault("PRODUCT_SERVICE_URL", "http://localhost:8081/api")
	viper.SetDefault("STOCK_CLIENT_TIMEOUT", "5s")
	viper.SetDefault("LOCK_BACKEND", LockBackendMemory)
	viper.SetDefault("LOCK_TTL", "30s")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RECONCILE_INTERVAL", "30s")
	viper.SetDefault("RECONCILE_GRACE", "10s")
	viper.SetDefault("RECONCILE_BATCH_SIZE", 50)
	viper.SetDefault("RECONCILE_MAX_ATTEMPTS", 10)
	viper.SetDefault("RATE_LIMIT", "100-S")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("OTEL_ENABLED", false)
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.ServiceName = viper.GetString("SERVICE_NAME")
	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = defaultPort
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.ProductServiceURL = strings.TrimRight(viper.GetString("PRODUCT_SERVICE_URL"), "/")
	cfg.StockClientTimeout = durationOrDefault("STOCK_CLIENT_TIMEOUT", 5*time.Second)

	cfg.LockBackend = strings.ToLower(viper.GetString("LOCK_BACKEND"))
	if cfg.LockBackend != LockBackendMemory && cfg.LockBackend != LockBackendRedis {
		log.Printf("Warning: Invalid value for LOCK_BACKEND ('%s'). Defaulting to %s.\n", cfg.LockBackend, LockBackendMemory)
		cfg.LockBackend = LockBackendMemory
	}
	cfg.LockTTL = durationOrDefault("LOCK_TTL", 30*time.Second)
	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")

	cfg.ReconcileInterval = durationOrDefault("RECONCILE_INTERVAL", 30*time.Second)
	cfg.ReconcileGrace = durationOrDefault("RECONCILE_GRACE", 10*time.Second)
	cfg.ReconcileBatchSize = positiveOrDefault("RECONCILE_BATCH_SIZE", 50)
	cfg.ReconcileMaxAttempts = positiveOrDefault("RECONCILE_MAX_ATTEMPTS", 10)

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.OTelEnabled = viper.GetBool("OTEL_ENABLED")
	cfg.OTelEndpoint = viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")

	return cfg, nil
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def)
		}
		return def
	}
	return d
}

func positiveOrDefault(key string, def int) int {
	n := viper.GetInt(key)
	if n <= 0 {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %d.\n", key, viper.GetString(key), def)
		return def
	}
	return n
}
