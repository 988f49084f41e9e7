package ratelimit

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// RedisBackend keeps counters in redis so several service instances share
// one budget per client.
type RedisBackend struct {
	client redis.UniversalClient
}

// NewRedisBackend connects to the redis server at addr.
func NewRedisBackend(addr string) *RedisBackend {
	return NewRedisBackendFromClient(redis.NewClient(&redis.Options{Addr: addr}))
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

// Ping checks the connection.
func (rb *RedisBackend) Ping(ctx context.Context) error {
	return errors.Trace(rb.client.Ping(ctx).Err())
}

func (rb *RedisBackend) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := redisKeyPrefix + key
	n, err := rb.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, errors.Annotatef(err, "incrementing %q", k)
	}
	if n == 1 {
		if err := rb.client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, 0, errors.Annotatef(err, "expiring %q", k)
		}
		return n, window, nil
	}
	ttl, err := rb.client.PTTL(ctx, k).Result()
	if err != nil {
		return 0, 0, errors.Annotatef(err, "reading ttl of %q", k)
	}
	if ttl < 0 {
		// The key lost its expiry; start the window over from here.
		if err := rb.client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, 0, errors.Annotatef(err, "expiring %q", k)
		}
		ttl = window
	}
	return n, ttl, nil
}

// Close releases the client.
func (rb *RedisBackend) Close() error {
	return rb.client.Close()
}
