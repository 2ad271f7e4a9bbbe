package intake

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "intake:"

// RedisCache backs the guard with a shared Redis instance so the rate and
// duplicate windows hold across replicas. Expiry is delegated to Redis, so
// Sweep is a no-op.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Incr implements Cache via INCR plus a first-write EXPIRE.
func (c *RedisCache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := c.client.Incr(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := c.client.Expire(ctx, redisKeyPrefix+key, ttl).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// PutIfAbsent implements Cache via SET NX EX.
func (c *RedisCache) PutIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, redisKeyPrefix+key, "1", ttl).Result()
}

// Sweep implements Cache; Redis expires keys itself.
func (c *RedisCache) Sweep(ctx context.Context) error {
	return nil
}
