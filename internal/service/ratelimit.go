package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/timmy/jokegen/internal/config"
)

// RateLimiter caps how often one key may perform an expensive action.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

// NewRateLimiter builds the limiter described by cfg: a Redis fixed window
// when enabled, otherwise a limiter that allows everything.
func NewRateLimiter(cfg *config.RateLimitConfig) (RateLimiter, error) {
	if !cfg.Enabled {
		return NoopRateLimiter{}, nil
	}
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, fmt.Errorf("rate limit enabled but redis_addr is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisRateLimiter(rdb, cfg.Requests, cfg.Window), nil
}

// RedisRateLimiter counts requests per key in fixed windows with INCR + EXPIRE.
type RedisRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisRateLimiter allows limit requests per window for each key.
func NewRedisRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window, prefix: "jokegen:ratelimit:"}
}

// Allow counts one request for key and reports whether it is within the limit.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, bucket)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return incr.Val() <= int64(l.limit), nil
}

func (l *RedisRateLimiter) Close() error {
	return l.rdb.Close()
}

// NoopRateLimiter allows every request.
type NoopRateLimiter struct{}

func (NoopRateLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

func (NoopRateLimiter) Close() error { return nil }
