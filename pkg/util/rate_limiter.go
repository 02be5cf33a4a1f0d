package util

import (
	"context"
	"time"
)

// maxBackoff caps how many multiples of the base interval a run of failures can stretch to.
const maxBackoff = 10

// RateLimiter paces a loop at a base interval, slowing down while the work keeps failing.
type RateLimiter struct {
	ticker     *time.Ticker
	errorCount int
	baseRate   time.Duration
}

func NewRateLimiter(baseRate time.Duration) *RateLimiter {
	return &RateLimiter{
		baseRate: baseRate,
		ticker:   time.NewTicker(baseRate),
	}
}

// Tick blocks until the next slot. It returns false once ctx is done.
func (rl *RateLimiter) Tick(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-rl.ticker.C:
		return true
	}
}

func (rl *RateLimiter) Close() {
	rl.ticker.Stop()
}

// Interval is the current spacing between ticks.
func (rl *RateLimiter) Interval() time.Duration {
	if rl.errorCount > 0 {
		return rl.baseRate * time.Duration(rl.errorCount+1)
	}
	return rl.baseRate
}

// UpdateRate backs off one step after a failure and recovers one step after a success.
func (rl *RateLimiter) UpdateRate(isError bool) {
	before := rl.errorCount
	if isError {
		if rl.errorCount < maxBackoff {
			rl.errorCount++
		}
	} else if rl.errorCount > 0 {
		rl.errorCount--
	}

	if rl.errorCount != before {
		rl.ticker.Reset(rl.Interval())
	}
}
