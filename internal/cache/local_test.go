package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Domenick1991/flightline/config"
	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_LockIsExclusivePerKey(t *testing.T) {
	l := NewLocal(time.Second)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "bfs:1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestLocal_LockBusyAndIndependentKeys(t *testing.T) {
	l := NewLocal(20 * time.Millisecond)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "postflight:1")
	require.NoError(t, err)

	_, err = l.Lock(ctx, "postflight:1")
	assert.ErrorIs(t, err, domain.ErrRecordBusy)

	other, err := l.Lock(ctx, "postflight:2")
	require.NoError(t, err)
	other()

	unlock()
	unlock()

	again, err := l.Lock(ctx, "postflight:1")
	require.NoError(t, err)
	again()
}

func TestLocal_LockEntriesAreReleased(t *testing.T) {
	l := NewLocal(20 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		unlock, err := l.Lock(ctx, fmt.Sprintf("bfs:%d", i))
		require.NoError(t, err)
		unlock()
	}
	assert.Empty(t, l.locks)

	unlock, err := l.Lock(ctx, "bfs:1")
	require.NoError(t, err)
	_, err = l.Lock(ctx, "bfs:1")
	assert.ErrorIs(t, err, domain.ErrRecordBusy)
	assert.Len(t, l.locks, 1)
	unlock()
	assert.Empty(t, l.locks)
}

func TestLocal_LockCanceledContext(t *testing.T) {
	l := NewLocal(time.Second)
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocal_Sessions(t *testing.T) {
	l := NewLocal(0)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, l.SaveSession(ctx, "tok", 5, time.Hour))
	id, err := l.LookupSession(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	now = now.Add(2 * time.Hour)
	_, err = l.LookupSession(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	require.NoError(t, l.SaveSession(ctx, "tok2", 6, time.Hour))
	require.NoError(t, l.DeleteSession(ctx, "tok2"))
	_, err = l.LookupSession(ctx, "tok2")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"}, Options{LockTTL: time.Second})
	assert.NotNil(t, c)
	assert.Equal(t, "cache:aircraft:7", aircraftKey(7))
	assert.Equal(t, "lock:record:bfs:3", recordLockKey("bfs:3"))
	assert.Equal(t, "session:abc", sessionKey("abc"))
	assert.NoError(t, c.Close())
}
