package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisRateLimiter implements a sliding-window rate limiter over a Redis
// sorted set per identifier. When Redis is unreachable it fails open and
// reports the degraded decision to the caller.
type RedisRateLimiter struct {
	client    *redis.Client
	keyPrefix string
	limit     int64
	window    time.Duration
}

// NewRedisRateLimiter creates a limiter allowing limit requests per window
func NewRedisRateLimiter(client *redis.Client, keyPrefix string, limit int64, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
	}
}

// Allow reports whether the identifier may proceed. A Redis failure returns
// allowed=true, degraded=true so an infrastructure outage never locks
// callers out.
func (l *RedisRateLimiter) Allow(ctx context.Context, identifier string) (allowed, degraded bool, err error) {
	key := fmt.Sprintf("%s:%s", l.keyPrefix, identifier)
	now := time.Now()
	windowStart := now.Add(-l.window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.New().String()),
	})
	pipe.Expire(ctx, key, l.window)

	if _, pipeErr := pipe.Exec(ctx); pipeErr != nil {
		log.WithFields(log.Fields{
			"identifier": identifier,
			"error":      pipeErr,
		}).Warn("Rate limiter backend unavailable, failing open")
		return true, true, nil
	}

	if countCmd.Val() >= l.limit {
		return false, false, nil
	}
	return true, false, nil
}
