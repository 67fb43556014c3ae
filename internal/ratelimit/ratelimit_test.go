package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

var cfg = config.RateLimitConfig{Requests: 3, WindowSec: 60}

func newClock() *clock {
	return &clock{t: time.Date(2025, 3, 1, 12, 0, 5, 0, time.UTC)}
}

// exercise runs the shared fixed-window contract against l.
func exercise(t *testing.T, l Limiter, c *clock) {
	t.Helper()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d, err := l.CanMakeRequest(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 3-i, d.Remaining)
	}

	d, err := l.CanMakeRequest(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 1, 0, 0, time.UTC), d.ResetAt)

	other, err := l.CanMakeRequest(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "identities are counted separately")

	c.advance(time.Minute)
	d, err = l.CanMakeRequest(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "a new window starts from zero")
	assert.Equal(t, 2, d.Remaining)
}

func TestMemoryFixedWindow(t *testing.T) {
	c := newClock()
	exercise(t, NewMemory(cfg, WithClock(c.now)), c)
}

func TestMemorySweepsOldWindows(t *testing.T) {
	c := newClock()
	m := NewMemory(cfg, WithClock(c.now))
	ctx := context.Background()

	_, _ = m.CanMakeRequest(ctx, "a")
	_, _ = m.CanMakeRequest(ctx, "b")
	c.advance(2 * time.Minute)
	_, _ = m.CanMakeRequest(ctx, "a")

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Len(t, m.buckets, 1)
}

func TestDefaults(t *testing.T) {
	m := NewMemory(config.RateLimitConfig{})
	assert.Equal(t, DefaultRequests, m.limit)
	assert.Equal(t, DefaultWindow, m.window)
}

func TestRedisFixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := newClock()
	exercise(t, NewRedis(rdb, cfg, WithClock(c.now)), c)

	key := keyPrefix + "user-1:" + "1740830400"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	_, err := NewRedis(rdb, cfg).CanMakeRequest(context.Background(), "user-1")
	assert.Error(t, err)
}
