package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"))
	}
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiterIsPerClient(t *testing.T) {
	rl := NewRateLimiter(1)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0)
	defer rl.Stop()

	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("10.0.0.1"))
	}
}

func TestRateLimiterRetryAfter(t *testing.T) {
	rl := NewRateLimiter(1)
	defer rl.Stop()

	assert.Equal(t, 0, rl.RetryAfter("10.0.0.1"))

	rl.Allow("10.0.0.1")
	retry := rl.RetryAfter("10.0.0.1")
	assert.Greater(t, retry, 0)
	assert.LessOrEqual(t, retry, 60)
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1)
	rl.Stop()
	rl.Stop()
}
