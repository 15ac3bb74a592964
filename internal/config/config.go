package config

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Snapshot backends.
const (
	SnapshotMemory   = "memory"
	SnapshotRedis    = "redis"
	SnapshotPostgres = "postgres"
)

// Product sources.
const (
	SourceFile     = "file"
	SourceREST     = "rest"
	SourcePostgres = "postgres"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int           `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	ProductCacheMaxAge int           `env:"PRODUCT_CACHE_MAX_AGE" envDefault:"60"`

	// Session state
	SnapshotBackend string        `env:"SNAPSHOT_BACKEND" envDefault:"memory"`
	SnapshotTTL     time.Duration `env:"SNAPSHOT_TTL" envDefault:"720h"`
	SessionIdleTTL  time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	SessionSweep    time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
	ToastTTL        time.Duration `env:"TOAST_TTL" envDefault:"3s"`
	ToastLimit      int           `env:"TOAST_LIMIT" envDefault:"20"`

	// Product catalog
	ProductSource   string        `env:"PRODUCT_SOURCE" envDefault:"file"`
	ProductFile     string        `env:"PRODUCT_FILE" envDefault:"data/products.json"`
	ProductAPIURL   string        `env:"PRODUCT_API_URL"`
	ProductAPIKey   string        `env:"PRODUCT_API_KEY"`
	ProductAPITable string        `env:"PRODUCT_API_TABLE" envDefault:"products"`
	ProductTimeout  time.Duration `env:"PRODUCT_API_TIMEOUT" envDefault:"10s"`
	PageSize        int           `env:"CATALOG_PAGE_SIZE" envDefault:"9"`
	CatalogLanguage string        `env:"CATALOG_LANGUAGE" envDefault:"en"`
	Brands          []string      `env:"CATALOG_BRANDS" envSeparator:","`
	BatteryOptions  []string      `env:"CATALOG_BATTERY" envSeparator:","`
	SizeOptions     []string      `env:"CATALOG_SIZES" envSeparator:","`
	PromotionsFile  string        `env:"PROMOTIONS_FILE"`
	DealsLimit      int           `env:"DEALS_LIMIT" envDefault:"4"`

	// Checkout
	Currency        string  `env:"CHECKOUT_CURRENCY" envDefault:"USD"`
	EstimatedTax    float64 `env:"CHECKOUT_ESTIMATED_TAX" envDefault:"50"`
	ExpressShipping float64 `env:"CHECKOUT_EXPRESS_SHIPPING" envDefault:"8.50"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB   string `env:"STOREFRONT_DB_NAME" envDefault:"storefront"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisURL      string `env:"REDIS_URL"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Rate limiting, per session or client IP
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// pprof is served only to these networks.
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from a .env file, if present, and the environment.
func Load() (*Config, error) {
	if err := pkgconfig.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CurrencyUnit returns the parsed checkout currency.
func (c *Config) CurrencyUnit() currency.Unit {
	u, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.USD
	}
	return u
}

// Language returns the tag used to order products by name.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.CatalogLanguage)
	if err != nil {
		return language.English
	}
	return tag
}

// validate checks cross-field configuration rules.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !slices.Contains([]string{SnapshotMemory, SnapshotRedis, SnapshotPostgres}, c.SnapshotBackend) {
		return fmt.Errorf("SNAPSHOT_BACKEND must be one of memory, redis, postgres, got %q", c.SnapshotBackend)
	}

	switch c.ProductSource {
	case SourceFile:
		if c.ProductFile == "" {
			return fmt.Errorf("PRODUCT_FILE is required when PRODUCT_SOURCE is %q", SourceFile)
		}
	case SourceREST:
		u, err := url.Parse(c.ProductAPIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("PRODUCT_API_URL must be an absolute URL when PRODUCT_SOURCE is %q", SourceREST)
		}
	case SourcePostgres:
	default:
		return fmt.Errorf("PRODUCT_SOURCE must be one of file, rest, postgres, got %q", c.ProductSource)
	}

	if c.PageSize < 1 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if _, err := language.Parse(c.CatalogLanguage); err != nil {
		return fmt.Errorf("CATALOG_LANGUAGE: %w", err)
	}
	if _, err := currency.ParseISO(c.Currency); err != nil {
		return fmt.Errorf("CHECKOUT_CURRENCY: %w", err)
	}
	if c.EstimatedTax < 0 || c.ExpressShipping < 0 {
		return fmt.Errorf("checkout costs must not be negative")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must allow at least one request, got %v rps burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	return nil
}
