package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	// Token validation for the external identity provider.
	AuthJWTSecret string
	AuthIssuer    string
	AuthAudience  string

	// Storefront money settings. Prices are rupees; tax is basis points.
	CurrencyCode    string
	TaxRateBps      int64
	ShippingFlatFee decimal.Decimal

	CartTTL         time.Duration
	CatalogCacheTTL time.Duration
	IdempotencyTTL  time.Duration

	QuoteRateLimit       int
	QuoteRateLimitWindow time.Duration

	OrderWebhookURL string

	RunMigrations bool
	MigrationsDir string

	LogFormat string
	LogLevel  string

	MetricsNamespace string
	MetricsBucketsMS string

	TracingEnabled  bool
	TracingEndpoint string
	TracingExporter string
	TracingSampling float64
	ServiceName     string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		AuthJWTSecret: k.String("AUTH_JWT_SECRET"),
		AuthIssuer:    strings.TrimSpace(k.String("AUTH_ISSUER")),
		AuthAudience:  strings.TrimSpace(k.String("AUTH_AUDIENCE")),

		CurrencyCode:    valueOrDefault(k.String("CURRENCY_CODE"), "INR"),
		TaxRateBps:      parseInt64(k.String("TAX_RATE_BPS"), 1800),
		ShippingFlatFee: parseDecimal(k.String("SHIPPING_FLAT_FEE"), "100"),

		CartTTL:         parseDuration(k.String("CART_TTL"), "168h"),
		CatalogCacheTTL: parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		IdempotencyTTL:  parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),

		QuoteRateLimit:       int(parseInt64(k.String("QUOTE_RATE_LIMIT"), 60)),
		QuoteRateLimitWindow: parseDuration(k.String("QUOTE_RATE_LIMIT_WINDOW"), "1m"),

		OrderWebhookURL: strings.TrimSpace(k.String("ORDER_WEBHOOK_URL")),

		RunMigrations: parseBool(valueOrDefault(k.String("RUN_MIGRATIONS"), "true")),
		MigrationsDir: valueOrDefault(k.String("MIGRATIONS_DIR"), "db/migrations"),

		LogFormat: valueOrDefault(k.String("LOG_FORMAT"), "json"),
		LogLevel:  valueOrDefault(k.String("LOG_LEVEL"), "info"),

		MetricsNamespace: valueOrDefault(k.String("METRICS_NAMESPACE"), "cards"),
		MetricsBucketsMS: k.String("METRICS_BUCKETS_MS"),

		TracingEnabled:  parseBool(k.String("TRACING_ENABLED")),
		TracingEndpoint: strings.TrimSpace(k.String("TRACING_ENDPOINT")),
		TracingExporter: valueOrDefault(k.String("TRACING_EXPORTER"), "otlp"),
		TracingSampling: parseFloat(k.String("TRACING_SAMPLING_RATIO"), 1),
		ServiceName:     valueOrDefault(k.String("SERVICE_NAME"), "backend-cards"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.TaxRateBps < 0 {
		return nil, errors.New("TAX_RATE_BPS must not be negative")
	}
	if cfg.ShippingFlatFee.IsNegative() {
		return nil, errors.New("SHIPPING_FLAT_FEE must not be negative")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt64(value string, fallback int64) int64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseDecimal(value, fallback string) decimal.Decimal {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = fallback
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.RequireFromString(fallback)
	}
	return d
}

// MustLoad behaves like Load but panics on error. Useful for command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
