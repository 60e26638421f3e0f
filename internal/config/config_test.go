package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "vortex:events", cfg.RedisChannel)
	assert.Len(t, cfg.Warnings, 2)
}

func TestFromEnvSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "short")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestFromEnvDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_DSN", "")

	t.Setenv("STORAGE_DRIVER", "SQLite")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "vortex.db", cfg.DatabaseDSN)

	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}
