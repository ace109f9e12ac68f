package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func runStoreTests(t *testing.T, store Store) {
	ctx := context.Background()
	window := 60 * time.Second
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("admits up to the limit", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			allowed, _, err := store.Take(ctx, "ip-a", base.Add(time.Duration(i)*time.Second), window, 10)
			require.NoError(t, err)
			require.True(t, allowed, "request %d", i+1)
		}

		allowed, retryAfter, err := store.Take(ctx, "ip-a", base.Add(10*time.Second), window, 10)
		require.NoError(t, err)
		require.False(t, allowed)
		// The oldest entry (base) expires at base+window.
		require.InDelta(t, float64(50*time.Second), float64(retryAfter), float64(time.Millisecond))
	})

	t.Run("rejections do not extend the window", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			allowed, _, err := store.Take(ctx, "ip-a", base.Add(20*time.Second), window, 10)
			require.NoError(t, err)
			require.False(t, allowed)
		}

		// Once the original requests roll out of the window, admission resumes.
		allowed, _, err := store.Take(ctx, "ip-a", base.Add(window).Add(10*time.Second), window, 10)
		require.NoError(t, err)
		require.True(t, allowed)
	})

	t.Run("keys are independent", func(t *testing.T) {
		allowed, _, err := store.Take(ctx, "ip-b", base, window, 1)
		require.NoError(t, err)
		require.True(t, allowed)

		allowed, _, err = store.Take(ctx, "ip-c", base, window, 1)
		require.NoError(t, err)
		require.True(t, allowed)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	runStoreTests(t, NewRedisStore(client))
}

func TestLimiterAllow(t *testing.T) {
	limiter := New(NewMemoryStore(), 2, time.Minute)
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return base }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, "ip")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, time.Minute, retryAfter)
}
