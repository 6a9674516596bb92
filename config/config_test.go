package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/novels/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "novels", cfg.DBName)
	assert.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MONGODB_DB", "catalog")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("AUTH_RATE_LIMIT_BURST", "2")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "catalog", cfg.DBName)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 2, cfg.AuthRateLimitBurst)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"defaults_in_development", func(c *config.Config) {}, false},
		{"default_secret_in_production", func(c *config.Config) { c.Environment = "production" }, true},
		{"strong_secret_in_production", func(c *config.Config) {
			c.Environment = "production"
			c.JWTSecret = "a-long-random-secret"
		}, false},
		{"zero_upload_limit", func(c *config.Config) { c.MaxUploadMB = 0 }, true},
		{"smtp_without_recipient", func(c *config.Config) { c.SMTPHost = "smtp.example.com" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
