package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
)

type ServerConfig struct {
	Port    string
	GinMode string
}

type DBConfig struct {
	DSN string // kosong = in-memory store
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

type PricingConfig struct {
	TaxRate               float64
	FreeShippingThreshold float64
	FlatShippingRate      float64
	Currency              string
}

type PaymentConfig struct {
	StripeSecretKey string
	Timeout         time.Duration
}

type SupplierConfig struct {
	Latency           time.Duration
	ConfirmDelay      time.Duration
	ShipDelay         time.Duration
	OutboxPollSpec    string
	InventorySyncSpec string
	MaxAttempts       int
}

type BrokerConfig struct {
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
}

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Auth     AuthConfig
	Pricing  PricingConfig
	Payment  PaymentConfig
	Supplier SupplierConfig
	Broker   BrokerConfig
}

const defaultJWTSecret = "your-very-secret-key-for-jwt"

// Load reads .env when present, then the process environment.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		logger.Info("Config: loaded .env file")
	}

	cfg := Config{
		Server: LoadServerConfig("8080"),
		DB:     DBConfig{DSN: GetEnv("DATABASE_DSN", "")},
		Auth: AuthConfig{
			JWTSecret:     GetEnv("JWT_SECRET_KEY", ""),
			TokenTTL:      GetEnvAsDuration("TOKEN_TTL", 7*24*time.Hour),
			AdminEmail:    GetEnv("ADMIN_EMAIL", "admin@fashionstore.com"),
			AdminPassword: GetEnv("ADMIN_PASSWORD", "change-me-admin"),
		},
		Pricing: PricingConfig{
			TaxRate:               GetEnvAsFloat("TAX_RATE", 0.08),
			FreeShippingThreshold: GetEnvAsFloat("FREE_SHIPPING_THRESHOLD", 75),
			FlatShippingRate:      GetEnvAsFloat("FLAT_SHIPPING_RATE", 9.99),
			Currency:              strings.ToLower(GetEnv("PAYMENT_CURRENCY", "usd")),
		},
		Payment: PaymentConfig{
			StripeSecretKey: GetEnv("STRIPE_SECRET_KEY", ""),
			Timeout:         GetEnvAsDuration("PAYMENT_TIMEOUT", 30*time.Minute),
		},
		Supplier: SupplierConfig{
			Latency:           GetEnvAsDuration("SUPPLIER_LATENCY", 200*time.Millisecond),
			ConfirmDelay:      GetEnvAsDuration("SUPPLIER_CONFIRM_DELAY", 2*time.Second),
			ShipDelay:         GetEnvAsDuration("SUPPLIER_SHIP_DELAY", 24*time.Hour),
			OutboxPollSpec:    GetEnv("OUTBOX_POLL_SPEC", "@every 1s"),
			InventorySyncSpec: GetEnv("INVENTORY_SYNC_SPEC", "@every 1h"),
			MaxAttempts:       GetEnvAsInt("OUTBOX_MAX_ATTEMPTS", 5),
		},
		Broker: BrokerConfig{
			RedisAddr:    GetEnv("REDIS_ADDR", ""),
			KafkaBrokers: GetEnvAsList("KAFKA_BROKERS"),
			KafkaTopic:   GetEnv("KAFKA_TOPIC", "storefront.events"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET_KEY not set, using default insecure key")
		cfg.Auth.JWTSecret = defaultJWTSecret
	}
	return cfg
}

func LoadServerConfig(defaultPort string) ServerConfig {
	port := GetEnv("SERVER_PORT", defaultPort)
	return ServerConfig{Port: ":" + strings.TrimPrefix(port, ":"), GinMode: GetEnv("GIN_MODE", "release")}
}

// Helper untuk mendapatkan Environment Variable jika ada, atau default
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func GetEnvAsInt(key string, fallback int) int {
	strValue := GetEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func GetEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(GetEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func GetEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(GetEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// GetEnvAsDuration accepts Go durations ("90s", "2m"). A bare integer is read as seconds.
func GetEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(GetEnv(key, ""))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	logger.Warn("Config: invalid duration for %s=%q, using %v", key, raw, fallback)
	return fallback
}

// GetEnvAsList splits a comma separated value, dropping blanks.
func GetEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(GetEnv(key, ""), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
