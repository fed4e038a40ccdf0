package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "booking")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "booking")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()
	assert.Equal(t, 10*time.Minute, cfg.HoldTTL)
	assert.Equal(t, time.Hour, cfg.CancelCutoff)
	assert.Equal(t, 10, cfg.MaxSeatsPerBooking)
	assert.Equal(t, 3, cfg.TxMaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.TxRetryBase)
	assert.Equal(t, time.Minute, cfg.ReapInterval)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HOLD_TTL_MIN", "5")
	t.Setenv("CANCEL_CUTOFF_MIN", "120")
	t.Setenv("MAX_SEATS_PER_BOOKING", "4")
	t.Setenv("TX_MAX_ATTEMPTS", "5")

	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.HoldTTL)
	assert.Equal(t, 2*time.Hour, cfg.CancelCutoff)
	assert.Equal(t, 4, cfg.MaxSeatsPerBooking)
	assert.Equal(t, 5, cfg.TxMaxAttempts)
}

func TestRateLimitConfigTTLFloor(t *testing.T) {
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "10s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 50*time.Second, cfg.TTL, "TTL is raised to five refill intervals")
}

func TestCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")

	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
}
