package quota

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l := NewRedisLimiter(client)
	l.Now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return l, mr
}

func TestRedisLimiter_EnforcesDailyLimit(t *testing.T) {
	l, mr := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "tenant-1", 3)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "tenant-1", 3)
	require.NoError(t, err)
	assert.False(t, ok)

	used, err := l.Used(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 3, used)

	assert.True(t, mr.Exists("quota:tenant-1:2026-03-14"))
	assert.Equal(t, keyTTL, mr.TTL("quota:tenant-1:2026-03-14"))

	// other tenants are counted separately
	ok, err = l.Allow(ctx, "tenant-2", 3)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiter_NewDayResets(t *testing.T) {
	l, _ := setupLimiter(t)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "tenant-1", 1)
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "tenant-1", 1)
	assert.False(t, ok)

	l.Now = func() time.Time { return time.Date(2026, 3, 15, 0, 0, 1, 0, time.UTC) }
	ok, _ = l.Allow(ctx, "tenant-1", 1)
	assert.True(t, ok)
}

func TestRedisLimiter_ZeroLimitIsUnlimited(t *testing.T) {
	l, mr := setupLimiter(t)

	ok, err := l.Allow(context.Background(), "tenant-1", 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, mr.Keys())
}

func TestRedisLimiter_RedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	l := NewRedisLimiter(client)

	_, err := l.Allow(context.Background(), "tenant-1", 5)
	assert.Error(t, err)
}
