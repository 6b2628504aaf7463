// Package quota enforces the per-tenant daily send limit.
package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter charges one send against a tenant's daily limit. A limit <= 0 is
// unlimited.
type Limiter interface {
	Allow(ctx context.Context, tenantID string, limit int) (bool, error)
}

// Unlimited is used when no Redis is configured.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string, int) (bool, error) { return true, nil }

const keyTTL = 48 * time.Hour

type RedisLimiter struct {
	Client *redis.Client
	// Now is overridable in tests; days are counted in UTC.
	Now func() time.Time
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{Client: client, Now: time.Now}
}

// NewRedisLimiterFromURL connects and pings before returning.
func NewRedisLimiterFromURL(ctx context.Context, redisURL string) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return NewRedisLimiter(client), nil
}

func (l *RedisLimiter) key(tenantID string) string {
	return fmt.Sprintf("quota:%s:%s", tenantID, l.Now().UTC().Format("2006-01-02"))
}

func (l *RedisLimiter) Allow(ctx context.Context, tenantID string, limit int) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	key := l.key(tenantID)

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, keyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("quota incr: %w", err)
	}

	if incr.Val() > int64(limit) {
		// Refused sends do not count.
		if err := l.Client.Decr(ctx, key).Err(); err != nil {
			return false, fmt.Errorf("quota decr: %w", err)
		}
		return false, nil
	}
	return true, nil
}

// Used reports how many sends the tenant has been charged for today.
func (l *RedisLimiter) Used(ctx context.Context, tenantID string) (int, error) {
	v, err := l.Client.Get(ctx, l.key(tenantID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}
