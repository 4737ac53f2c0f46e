package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter counts hits in fixed windows shared by every replica
type RedisLimiter struct {
	client  redis.Cmdable
	prefix  string
	window  time.Duration
	maxHits int
	now     func() time.Time
}

func NewRedisLimiter(client redis.Cmdable, prefix string, window time.Duration, maxHits int) *RedisLimiter {
	return &RedisLimiter{
		client:  client,
		prefix:  prefix,
		window:  window,
		maxHits: maxHits,
		now:     time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to count hit: %w", err)
	}

	return incr.Val() <= int64(l.maxHits), nil
}
