package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_PORT", "STORAGE_DRIVER", "DATA_DIR", "DATABASE_DSN", "JWT_SECRET", "JWT_TTL",
		"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "MIN_DOWNTIME", "SEED_DEFAULT_USERS",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StorageJSON, cfg.StorageDriver)
	assert.Equal(t, "shift_data", cfg.DataDir)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 12*time.Hour, cfg.MinRest)
	assert.True(t, cfg.SeedDefaults)
	assert.NotEmpty(t, cfg.Warnings)
}

func TestFromEnvSecretRules(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		clearEnv(t)
		_, err := FromEnv()
		assert.Error(t, err)
	})
	t.Run("too short", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "short")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("MIN_DOWNTIME", "11h")
	t.Setenv("SEED_DEFAULT_USERS", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, defaultDSN, cfg.DatabaseDSN)
	assert.Equal(t, 11*time.Hour, cfg.MinRest)
	assert.False(t, cfg.SeedDefaults)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}

func TestFromEnvInvalidValues(t *testing.T) {
	tests := map[string]string{
		"STORAGE_DRIVER":     "mongo",
		"JWT_TTL":            "tomorrow",
		"MIN_DOWNTIME":       "-1h",
		"SEED_DEFAULT_USERS": "sometimes",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("JWT_SECRET", testSecret)
			t.Setenv(key, value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
