package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/flightline/config"
	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(config.RedisConfig{Addr: mr.Addr()}, Options{
		AircraftTTL: time.Minute,
		LockTTL:     10 * time.Second,
		LockWait:    150 * time.Millisecond,
	})
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_LockAcquireAndRelease(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	unlock, err := c.Lock(ctx, "bfs:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(recordLockKey("bfs:1")))
	assert.Equal(t, 10*time.Second, mr.TTL(recordLockKey("bfs:1")))

	unlock()
	assert.False(t, mr.Exists(recordLockKey("bfs:1")))

	unlock, err = c.Lock(ctx, "bfs:1")
	require.NoError(t, err)
	unlock()
}

func TestRedisCache_LockBusyAfterWait(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()

	unlock, err := c.Lock(ctx, "postflight:4")
	require.NoError(t, err)
	defer unlock()

	start := time.Now()
	_, err = c.Lock(ctx, "postflight:4")
	assert.ErrorIs(t, err, domain.ErrRecordBusy)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)

	other, err := c.Lock(ctx, "postflight:5")
	require.NoError(t, err)
	other()
}

func TestRedisCache_ExpiredLockReleaseKeepsNewOwner(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	stale, err := c.Lock(ctx, "bfs:3")
	require.NoError(t, err)

	mr.FastForward(11 * time.Second)
	require.False(t, mr.Exists(recordLockKey("bfs:3")))

	fresh, err := c.Lock(ctx, "bfs:3")
	require.NoError(t, err)
	owner, err := mr.Get(recordLockKey("bfs:3"))
	require.NoError(t, err)

	stale()
	got, err := mr.Get(recordLockKey("bfs:3"))
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	fresh()
	assert.False(t, mr.Exists(recordLockKey("bfs:3")))
}
