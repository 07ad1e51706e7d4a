package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, "agentfleet.db", cfg.ConfigDBPath)
	assert.Equal(t, "agentfleet_sessions.db", cfg.SessionDBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, 40, cfg.HistoryLimit)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AGENTFLEET_ADDR", ":9090")
	t.Setenv("AGENTFLEET_LOG_LEVEL", "debug")
	t.Setenv("AGENTFLEET_RATE_LIMIT", "10")
	t.Setenv("AGENTFLEET_HISTORY_LIMIT", "5")
	t.Setenv("AGENTFLEET_SHUTDOWN_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10, cfg.RateLimitPerMinute)
	assert.Equal(t, 5, cfg.HistoryLimit)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("AGENTFLEET_RATE_LIMIT", "many")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveHistoryLimit(t *testing.T) {
	t.Setenv("AGENTFLEET_HISTORY_LIMIT", "0")
	_, err := Load()
	assert.Error(t, err)
}
