package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreFixedWindow(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryStore(3, time.Minute)

	for i := 0; i < 3; i++ {
		d, err := limiter.Hit(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.Equal(t, 2-i, d.Remaining)
	}

	d, err := limiter.Hit(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 0, d.Remaining)
	require.Greater(t, d.RetryAfter, time.Duration(0))
	require.LessOrEqual(t, d.RetryAfter, time.Minute)
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryStore(1, time.Minute)

	d, err := limiter.Hit(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = limiter.Hit(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	d, err = limiter.Hit(ctx, "5.6.7.8")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestMemoryStoreWindowResets(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryStore(1, 30*time.Millisecond)

	d, err := limiter.Hit(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = limiter.Hit(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	time.Sleep(40 * time.Millisecond)

	d, err = limiter.Hit(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}
