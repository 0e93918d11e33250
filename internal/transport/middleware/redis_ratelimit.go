package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLimiter is a fixed-window counter shared by every replica.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, requestsPerMinute int) *RedisLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &RedisLimiter{
		client: client,
		prefix: "ratelimit",
		limit:  int64(requestsPerMinute),
		window: time.Minute,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()
	windowStart := now.Truncate(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, windowStart.Unix())

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("redis rate limit: %w", err)
	}

	if incr.Val() > l.limit {
		return false, windowStart.Add(l.window).Sub(now), nil
	}
	return true, 0, nil
}
