package config_test

import (
	"testing"
	"time"

	"github.com/stockroom-labs/stockroom/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "a-sufficiently-long-dev-secret")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 100, cfg.Admission.MaxRequests)
	assert.Equal(t, 60*time.Second, cfg.Admission.Window)
	assert.Equal(t, 5, cfg.Admission.LockoutThreshold)
	assert.Equal(t, 900*time.Second, cfg.Admission.LockoutDuration)
	assert.Equal(t, 1*time.Hour, cfg.Auth.TokenExpiry)
}

func TestLoad_AdmissionOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "2")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("LOCKOUT_THRESHOLD", "3")
	t.Setenv("LOCKOUT_DURATION", "5m")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Admission.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.Admission.Window)
	assert.Equal(t, 3, cfg.Admission.LockoutThreshold)
	assert.Equal(t, 5*time.Minute, cfg.Admission.LockoutDuration)
}

func TestLoad_MissingTokenSecret(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_WeakTokenSecretRejected(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "short")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ProductionRequiresLongerSecret(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "only-twenty-chars!!!")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("ENV", "production")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "localhost", Port: 5432, User: "postgres",
		Password: "pw", Name: "stockroom", SSLMode: "disable",
	}
	assert.Equal(t, "host=localhost port=5432 user=postgres password=pw dbname=stockroom sslmode=disable", cfg.DSN())
}
