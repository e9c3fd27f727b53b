package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrNotInitialized = errors.New("Redis client is not initialized")

// ErrLockNotOwned is returned when releasing a lock held by someone else.
var ErrLockNotOwned = errors.New("lock release failed: not the lock owner")

const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

var releaseLock = redis.NewScript(releaseLockScript)

type Cache struct {
	client *redis.Client
}

// NewCache wraps an initialized Redis client.
func NewCache(client *redis.Client) (*Cache, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	return &Cache{client: client}, nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	return c.client.Del(ctx, key).Err()
}

func (c *Cache) DeleteAll(ctx context.Context, pattern string) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get returns "" and no error when the key does not exist.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if c.client == nil {
		return "", ErrNotInitialized
	}
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (c *Cache) DeleteBatch(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// NewLock acquires a distributed lock using Redis
func (c *Cache) NewLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if c.client == nil {
		return false, ErrNotInitialized
	}
	return c.client.SetNX(ctx, key, value, ttl).Result()
}

// ReleaseLock releases a distributed lock using Redis with Lua scripting
func (c *Cache) ReleaseLock(ctx context.Context, key, value string) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	result, err := releaseLock.Run(ctx, c.client, []string{key}, value).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	return nil
}

// Ping checks that Redis answers.
func (c *Cache) Ping(ctx context.Context) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	return c.client.Ping(ctx).Err()
}
