package middleware

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/internal/config"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
)

// setupTestRedis connects to TEST_REDIS_URL. Tests are skipped when no
// server is available.
func setupTestRedis(t *testing.T) *goRedis.Client {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	client, err := redisInfra.NewClient(context.Background(), config.RedisConfig{URL: url}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisLimiter_SlidingWindow(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	prefix := "taskboard-test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(context.Background(), prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
	})

	l := NewRedisLimiter(client, prefix, 3, time.Minute)
	start := time.Now().Truncate(time.Millisecond)
	now := start
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		now = start.Add(time.Duration(i) * 10 * time.Millisecond)
		res, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, 2-i, res.Remaining)
	}

	now = start.Add(30 * time.Millisecond)
	res, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.WithinDuration(t, start.Add(time.Minute), res.ResetAt, time.Millisecond)

	other, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
	assert.Equal(t, 2, other.Remaining)

	// the oldest request leaves the window, freeing exactly one slot
	now = start.Add(time.Minute + 5*time.Millisecond)
	res, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Zero(t, res.Remaining)

	res, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.WithinDuration(t, start.Add(time.Minute+10*time.Millisecond), res.ResetAt, time.Millisecond)
}

func TestRedisLimiter_Unreachable(t *testing.T) {
	client := goRedis.NewClient(&goRedis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	_, err := NewRedisLimiter(client, "taskboard-test:", 3, time.Minute).Allow(context.Background(), "10.0.0.1")
	assert.Error(t, err)
}
