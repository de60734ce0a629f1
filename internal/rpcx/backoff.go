package rpcx

import (
	"math"
	"math/rand"
	"time"
)

// Backoff paces reconnection attempts with exponential growth and optional
// jitter. The zero value is not usable; build one with NewBackoff.
type Backoff struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Jitter    float64
}

// NewBackoff returns a Backoff with sane defaults for non-positive inputs.
func NewBackoff(base, max time.Duration, jitter float64) Backoff {
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	if max < base {
		max = base
	}
	if jitter < 0 {
		jitter = 0
	}
	return Backoff{BaseDelay: base, MaxDelay: max, Jitter: math.Min(jitter, 1)}
}

// ForAttempt returns the delay before the given attempt (0-indexed).
func (b Backoff) ForAttempt(attempt int) time.Duration {
	delay := b.BaseDelay
	if attempt > 0 {
		scaled := float64(b.BaseDelay) * math.Pow(2, float64(attempt))
		if scaled > float64(b.MaxDelay) {
			delay = b.MaxDelay
		} else {
			delay = time.Duration(scaled)
		}
	}
	if b.Jitter == 0 || delay <= 0 {
		return delay
	}
	factor := 1 + (rand.Float64()*2-1)*b.Jitter
	return time.Duration(float64(delay) * factor)
}
