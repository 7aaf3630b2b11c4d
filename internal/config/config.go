package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"regexp"

	"github.com/rs/zerolog"

	"seoforge/internal/domain"
)

var hexKeyPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// Config holds every runtime setting, read from the environment exactly once at
// startup and passed by reference into constructors. Nothing else in the module
// reads the process environment.
type Config struct {
	Environment string
	Port        string
	AppURL      string

	MongoURI      string
	MongoDatabase string
	RedisAddr     string

	EncryptionKey    string
	ShopifyAPIKey    string
	ShopifyAPISecret string

	OpenAIAPIKey string
	OpenAIModel  string

	SessionSecret   string
	BootstrapSecret string
}

// Production reports whether the service runs with production guarantees.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// Load builds the configuration from the environment. In production a missing
// or malformed encryption key, API credential, or session secret is a hard
// error. Outside production missing secrets are warned about and replaced with
// throwaway values so local development still works.
func Load(logger zerolog.Logger) (*Config, error) {
	cfg := &Config{
		Environment:      getenv("APP_ENV", "development"),
		Port:             getenv("PORT", "8080"),
		AppURL:           getenv("APP_URL", "http://localhost:8080"),
		MongoURI:         getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getenv("MONGODB_DATABASE", "seoforge"),
		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		EncryptionKey:    os.Getenv("ENCRYPTION_KEY"),
		ShopifyAPIKey:    os.Getenv("SHOPIFY_API_KEY"),
		ShopifyAPISecret: os.Getenv("SHOPIFY_API_SECRET"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getenv("OPENAI_MODEL", "gpt-4o-mini"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		BootstrapSecret:  os.Getenv("SESSION_BOOTSTRAP_SECRET"),
	}

	if cfg.EncryptionKey == "" {
		if cfg.Production() {
			return nil, &domain.ConfigError{Field: "ENCRYPTION_KEY", Message: "required in production; generate one with: openssl rand -hex 32"}
		}
		logger.Warn().Msg("ENCRYPTION_KEY not set, using a throwaway key; tokens will not survive a restart")
		cfg.EncryptionKey = randomHexKey()
	}
	if !hexKeyPattern.MatchString(cfg.EncryptionKey) {
		return nil, &domain.ConfigError{Field: "ENCRYPTION_KEY", Message: "must be exactly 64 hex characters (32 bytes)"}
	}

	if cfg.ShopifyAPIKey == "" || cfg.ShopifyAPISecret == "" {
		if cfg.Production() {
			return nil, &domain.ConfigError{Field: "SHOPIFY_API_KEY/SHOPIFY_API_SECRET", Message: "required in production"}
		}
		logger.Warn().Msg("Shopify API credentials not set; OAuth will fail until configured")
	}

	if cfg.OpenAIAPIKey == "" {
		if cfg.Production() {
			return nil, &domain.ConfigError{Field: "OPENAI_API_KEY", Message: "required in production"}
		}
		logger.Warn().Msg("OPENAI_API_KEY not set; keyword generation falls back to title-derived phrases")
	}

	if cfg.SessionSecret == "" {
		if cfg.Production() {
			return nil, &domain.ConfigError{Field: "SESSION_SECRET", Message: "required in production"}
		}
		logger.Warn().Msg("SESSION_SECRET not set, using a throwaway secret; sessions will not survive a restart")
		cfg.SessionSecret = randomHexKey()
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func randomHexKey() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
