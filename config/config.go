package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultJWTSecret is rejected by Validate in production.
const DefaultJWTSecret = "change-me-in-production"

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`

	MongoURI string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DBName   string `env:"MONGODB_DB" envDefault:"novels"`

	// RedisURL enables the catalog cache when set.
	RedisURL        string        `env:"REDIS_URL"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"30s"`

	// Covers go to S3 when a bucket is configured, to CoverDir otherwise.
	S3Bucket      string `env:"AWS_S3_BUCKET"`
	S3Region      string `env:"AWS_REGION" envDefault:"us-east-1"`
	S3AccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`
	CoverDir      string `env:"COVER_DIR" envDefault:"./data/covers"`
	MaxUploadMB   int64  `env:"MAX_UPLOAD_MB" envDefault:"10"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"168h"`

	// Contact messages are mailed only when SMTPHost is set.
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	ContactFrom  string `env:"CONTACT_FROM"`
	ContactTo    string `env:"CONTACT_TO"`

	AuthRateLimitRPS   float64 `env:"AUTH_RATE_LIMIT_RPS" envDefault:"1"`
	AuthRateLimitBurst int     `env:"AUTH_RATE_LIMIT_BURST" envDefault:"5"`
}

// Load parses the environment. Callers load .env first.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.MongoURI == "" || c.DBName == "" {
		errs = append(errs, errors.New("MONGODB_URI and MONGODB_DB are required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set to a strong secret in production"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.AuthRateLimitRPS <= 0 || c.AuthRateLimitBurst <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT_RPS and AUTH_RATE_LIMIT_BURST must be positive"))
	}
	if c.SMTPHost != "" && (c.ContactFrom == "" || c.ContactTo == "") {
		errs = append(errs, errors.New("CONTACT_FROM and CONTACT_TO are required when SMTP_HOST is set"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// MaxUploadBytes is the request body limit for novel creation.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}
