package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/flightline/config"
	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockPollInterval = 25 * time.Millisecond

// releaseScript deletes a lock only while it is still held by the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Options struct {
	AircraftTTL time.Duration
	LockTTL     time.Duration
	LockWait    time.Duration
}

type RedisCache struct {
	client      *redis.Client
	aircraftTTL time.Duration
	lockTTL     time.Duration
	lockWait    time.Duration
}

func NewRedisCache(cfg config.RedisConfig, opts Options) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		aircraftTTL: opts.AircraftTTL,
		lockTTL:     opts.LockTTL,
		lockWait:    opts.LockWait,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Lock takes the record lock for key, polling until the configured wait
// elapses. The returned func releases the lock if it is still ours.
func (c *RedisCache) Lock(ctx context.Context, key string) (func(), error) {
	k := recordLockKey(key)
	owner := uuid.NewString()
	deadline := time.Now().Add(c.lockWait)

	for {
		ok, err := c.client.SetNX(ctx, k, owner, c.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return func() {
				_ = releaseScript.Run(context.Background(), c.client, []string{k}, owner).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, domain.ErrRecordBusy.With("%s", key)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

func (c *RedisCache) GetAircraft(ctx context.Context, id int64) (*domain.Aircraft, error) {
	data, err := c.client.Get(ctx, aircraftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var aircraft domain.Aircraft
	if err := json.Unmarshal(data, &aircraft); err != nil {
		return nil, err
	}
	return &aircraft, nil
}

func (c *RedisCache) SetAircraft(ctx context.Context, aircraft *domain.Aircraft) error {
	payload, err := json.Marshal(aircraft)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, aircraftKey(aircraft.ID), payload, c.aircraftTTL).Err()
}

func (c *RedisCache) InvalidateAircraft(ctx context.Context, id int64) error {
	return c.client.Del(ctx, aircraftKey(id)).Err()
}

func (c *RedisCache) SaveSession(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	return c.client.Set(ctx, sessionKey(token), userID, ttl).Err()
}

// LookupSession returns the user bound to token, or domain.ErrUnauthenticated
// when the session is unknown or expired.
func (c *RedisCache) LookupSession(ctx context.Context, token string) (int64, error) {
	raw, err := c.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrUnauthenticated.With("session expired")
		}
		return 0, err
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session %s: %w", token, err)
	}
	return userID, nil
}

func (c *RedisCache) DeleteSession(ctx context.Context, token string) error {
	return c.client.Del(ctx, sessionKey(token)).Err()
}

func aircraftKey(id int64) string {
	return fmt.Sprintf("cache:aircraft:%d", id)
}

func recordLockKey(key string) string {
	return "lock:record:" + key
}

func sessionKey(token string) string {
	return "session:" + token
}
