package rpcx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoffGrowsUntilCap(t *testing.T) {
	b := NewBackoff(10*time.Millisecond, 50*time.Millisecond, 0)

	require.Equal(t, 10*time.Millisecond, b.ForAttempt(0))
	require.Equal(t, 20*time.Millisecond, b.ForAttempt(1))
	require.Equal(t, 40*time.Millisecond, b.ForAttempt(2))
	require.Equal(t, 50*time.Millisecond, b.ForAttempt(3))
	require.Equal(t, 50*time.Millisecond, b.ForAttempt(64))
}

func TestBackoffJitterStaysInBounds(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, time.Second, 0.5)
	for i := 0; i < 200; i++ {
		d := b.ForAttempt(0)
		require.GreaterOrEqual(t, d, 50*time.Millisecond)
		require.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestNewBackoffDefaults(t *testing.T) {
	b := NewBackoff(0, 0, -1)
	require.Equal(t, 50*time.Millisecond, b.BaseDelay)
	require.Equal(t, 50*time.Millisecond, b.MaxDelay)
	require.Zero(t, b.Jitter)
}
