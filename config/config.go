// Package config loads process configuration from the environment. Every
// value has a sensible default so the service starts with no configuration
// at all; credentials for model providers are read lazily by the provider
// registry, not here.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AppConfig holds all tunables of the agentfleetd process.
type AppConfig struct {
	// Addr is the HTTP listen address.
	Addr string

	// ConfigDBPath is the SQLite file holding instance configurations.
	ConfigDBPath string

	// SessionDBPath is the SQLite file holding conversation history.
	SessionDBPath string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// LogFormat is json or text.
	LogFormat string

	// RateLimitPerMinute caps requests per client per minute. Zero disables.
	RateLimitPerMinute int

	// HistoryLimit is the number of prior messages loaded per session.
	HistoryLimit int

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Addr:               envString("AGENTFLEET_ADDR", ":8000"),
		ConfigDBPath:       envString("AGENTFLEET_CONFIG_DB", "agentfleet.db"),
		SessionDBPath:      envString("AGENTFLEET_SESSION_DB", "agentfleet_sessions.db"),
		LogLevel:           envString("AGENTFLEET_LOG_LEVEL", "info"),
		LogFormat:          envString("AGENTFLEET_LOG_FORMAT", "json"),
		RateLimitPerMinute: 120,
		HistoryLimit:       40,
		ShutdownTimeout:    30 * time.Second,
	}

	var err error
	if cfg.RateLimitPerMinute, err = envInt("AGENTFLEET_RATE_LIMIT", cfg.RateLimitPerMinute); err != nil {
		return nil, err
	}
	if cfg.HistoryLimit, err = envInt("AGENTFLEET_HISTORY_LIMIT", cfg.HistoryLimit); err != nil {
		return nil, err
	}
	if cfg.HistoryLimit < 1 {
		return nil, fmt.Errorf("AGENTFLEET_HISTORY_LIMIT must be positive, got %d", cfg.HistoryLimit)
	}

	if v := os.Getenv("AGENTFLEET_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse AGENTFLEET_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
