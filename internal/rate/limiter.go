// Package rate limita intentos por clave (p.ej. login por IP) con backend
// Redis (ventana fija compartida entre réplicas) o memoria (token bucket local).
package rate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter: ventana fija (INCR + EXPIRE).
type RedisLimiter struct {
	client rdb.UniversalClient
	prefix string
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client rdb.UniversalClient, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "warden:rl:"
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), window: window, now: time.Now}
}

func (l *RedisLimiter) key(key string, winStart time.Time) string {
	return fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now().UTC()
	redisKey := l.key(key, now.Truncate(l.window))

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate: redis: %w", err)
	}

	remainingTTL := ttl.Val()
	if incr.Val() == 1 || remainingTTL < 0 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return Result{}, fmt.Errorf("rate: redis expire: %w", err)
		}
		remainingTTL = l.window
	}

	return decide(incr.Val(), l.max, remainingTTL, l.window), nil
}

func decide(hits, max int64, ttl, window time.Duration) Result {
	res := Result{Allowed: hits <= max, CurrentHits: hits, Remaining: max - hits}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = ttl
		if res.RetryAfter <= 0 {
			res.RetryAfter = time.Duration(math.Ceil(window.Seconds())) * time.Second
		}
	}
	return res
}
