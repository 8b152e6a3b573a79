package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/portfolio")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9090", cfg.PublicBaseURL)
	assert.Equal(t, 5*time.Minute, cfg.ReadCacheTTL)
	assert.True(t, cfg.AllowSignup)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, "postgres://u:p@db:5432/portfolio", cfg.DatabaseURL)
	assert.Equal(t, int64(5), cfg.ContactRateLimit)
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Production(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("REFRESH_SECRET", "fedcba9876543210fedcba9876543210")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ignat.dev, https://admin.ignat.dev,")
	t.Setenv("PUBLIC_BASE_URL", "https://api.ignat.dev/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://ignat.dev", "https://admin.ignat.dev"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://api.ignat.dev", cfg.PublicBaseURL)
	assert.False(t, cfg.AllowSignup)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("READ_CACHE_TTL", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "READ_CACHE_TTL")
}

func TestGetDatabaseURL_FromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "db")
	t.Setenv("POSTGRESQL_USER", "owner")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "portfolio")

	assert.Equal(t, "postgres://owner:p%40ss@db:5432/portfolio?sslmode=disable", getDatabaseURL())
}
