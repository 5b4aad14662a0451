package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/trendmart/storefront/internal/domain/pricing"
)

// Config holds the complete application configuration, loadable from
// environment variables (STORE_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (STORE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	JWT         JWTConfig
	Pricing     PricingConfig
	Redis       RedisConfig
	Recommend   RecommendConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// JWTConfig controls access token issuance.
type JWTConfig struct {
	Secret string        `usage:"HMAC secret for access tokens (STORE_JWT_SECRET)" flag:"jwt-secret"`
	TTL    time.Duration `default:"72h" usage:"Access token lifetime"`
}

// PricingConfig carries the checkout pricing knobs as strings so they can be
// written exactly in config files; Rules converts them to decimals.
type PricingConfig struct {
	FreeShippingThreshold string `default:"100" usage:"Subtotal above which shipping is free" flag:"free-shipping-threshold"`
	ShippingFlat          string `default:"10.00" usage:"Flat shipping price below the threshold" flag:"shipping-flat"`
	TaxRate               string `default:"0.15" usage:"Tax rate applied to the subtotal" flag:"tax-rate"`
	TaxEnabled            bool   `default:"true" usage:"Whether tax is applied" flag:"tax-enabled"`
}

// Rules parses the pricing knobs into the engine's configuration.
func (c PricingConfig) Rules() (pricing.Config, error) {
	threshold, err := decimal.NewFromString(c.FreeShippingThreshold)
	if err != nil {
		return pricing.Config{}, errors.Wrap(err, "parse free shipping threshold")
	}
	flat, err := decimal.NewFromString(c.ShippingFlat)
	if err != nil {
		return pricing.Config{}, errors.Wrap(err, "parse shipping flat")
	}
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return pricing.Config{}, errors.Wrap(err, "parse tax rate")
	}
	return pricing.Config{
		FreeShippingThreshold: threshold,
		ShippingFlat:          flat,
		TaxRate:               rate,
		TaxEnabled:            c.TaxEnabled,
	}, nil
}

// RedisConfig controls the shared recommendation cache. An empty address
// falls back to the in-process cache.
type RedisConfig struct {
	Addr     string `default:"" usage:"Redis address (host:port); empty uses in-memory caching" flag:"redis-addr"`
	Password string `usage:"Redis password" flag:"redis-password"`
	DB       int    `default:"0" usage:"Redis database number" flag:"redis-db"`
}

// RecommendConfig points at the external recommendation service.
type RecommendConfig struct {
	URL    string        `default:"" usage:"Recommendation service base URL; empty serves static defaults" flag:"recommend-url"`
	APIKey string        `usage:"Recommendation service API key" flag:"recommend-api-key"`
	TTL    time.Duration `default:"24h" usage:"Recommendation cache lifetime per user"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STORE",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set STORE_DATABASE_URL or DATABASE_URL")
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT secret is required: set STORE_JWT_SECRET")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and PORT
// to the application's STORE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
