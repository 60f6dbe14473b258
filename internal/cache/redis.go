package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/flamematch/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// counterTTL bounds staleness of denormalized counters; every touch
// refreshes it so active users keep their counts warm.
const counterTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

// KeyForLikeCount generates the Redis key for a user's received-like count.
func (c *RedisCache) KeyForLikeCount(userID string) string {
	return fmt.Sprintf("likes:count:%s", userID)
}

// KeyForUnreadCount generates the Redis key for a user's unread count in a match.
func (c *RedisCache) KeyForUnreadCount(matchID, userID string) string {
	return fmt.Sprintf("unread:%s:%s", matchID, userID)
}

// BumpCounter increments a counter key and refreshes its TTL. Used after
// a like lands or a message is sent, so cached counts track writes
// without a DB round trip.
func (c *RedisCache) BumpCounter(ctx context.Context, key string) error {
	if err := c.Client.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, counterTTL).Err()
}

// ResetCounter clears a counter key (e.g. unread count after mark-read).
func (c *RedisCache) ResetCounter(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// GetCounter reads a cached counter. A missing key is reported as
// (0, false, nil) so callers fall back to the database.
func (c *RedisCache) GetCounter(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil // treat garbage as a miss
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, counterTTL).Err()
	return n, true, nil
}

// SetCounter stores a counter value computed from the database.
func (c *RedisCache) SetCounter(ctx context.Context, key string, count int64) error {
	return c.Client.Set(ctx, key, count, counterTTL).Err()
}
