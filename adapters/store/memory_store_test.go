package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreSetIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.SetIfAbsent(ctx, "nonce", "1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.SetIfAbsent(ctx, "nonce", "1", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	// A dead entry does not block a new claim.
	ok, err = s.SetIfAbsent(ctx, "short", "1", 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)
	time.Sleep(20 * time.Millisecond)
	ok, err = s.SetIfAbsent(ctx, "short", "2", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}
