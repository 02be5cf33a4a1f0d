package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBackoff(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Close()

	assert.Equal(t, time.Minute, rl.Interval())

	rl.UpdateRate(true)
	assert.Equal(t, 2*time.Minute, rl.Interval())
	rl.UpdateRate(true)
	assert.Equal(t, 3*time.Minute, rl.Interval())

	for i := 0; i < 2*maxBackoff; i++ {
		rl.UpdateRate(true)
	}
	assert.Equal(t, time.Duration(maxBackoff+1)*time.Minute, rl.Interval())

	for i := 0; i < maxBackoff; i++ {
		rl.UpdateRate(false)
	}
	assert.Equal(t, time.Minute, rl.Interval())

	rl.UpdateRate(false)
	assert.Equal(t, time.Minute, rl.Interval(), "successes never speed up past the base rate")
}

func TestRateLimiterTick(t *testing.T) {
	rl := NewRateLimiter(time.Millisecond)
	defer rl.Close()

	assert.True(t, rl.Tick(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := NewRateLimiter(time.Hour)
	defer slow.Close()
	assert.False(t, slow.Tick(ctx))
}
