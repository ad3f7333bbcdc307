package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Result describes the outcome of a single rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter decides whether the client identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// slidingWindow keeps one sorted-set member per accepted request.
var slidingWindow = goRedis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local current = redis.call('ZCARD', key)

	if current < limit then
		local counter = redis.call('INCR', key .. ':seq')
		redis.call('ZADD', key, now, now .. ':' .. counter)
		local ttl = math.ceil(window_ms / 1000)
		redis.call('EXPIRE', key, ttl)
		redis.call('EXPIRE', key .. ':seq', ttl)
		return {1, limit - current - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local reset_at = 0
	if oldest and #oldest >= 2 then
		reset_at = tonumber(oldest[2]) + window_ms
	end
	return {0, 0, reset_at}
`)

// RedisLimiter is a sliding window limiter shared by every server instance.
type RedisLimiter struct {
	client *goRedis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *goRedis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()
	out, err := slidingWindow.Run(ctx, l.client, []string{l.prefix + key},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.limit,
		l.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(out) != 3 {
		return Result{}, fmt.Errorf("rate limit script: unexpected reply length %d", len(out))
	}

	resetAt := now.Add(l.window)
	if out[2] > 0 {
		resetAt = time.UnixMilli(out[2])
	}
	return Result{
		Allowed:   out[0] == 1,
		Limit:     l.limit,
		Remaining: int(out[1]),
		ResetAt:   resetAt,
	}, nil
}

// MemoryLimiter keeps one token bucket per key in process memory.
// A bucket holds limit tokens and refills over window.
type MemoryLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     int
	window    time.Duration
	every     rate.Limit
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		every:   rate.Every(window / time.Duration(limit)),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.every, l.limit)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	remaining := int(b.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	resetAt := now
	if missing := l.limit - remaining; missing > 0 {
		resetAt = now.Add(time.Duration(missing) * (l.window / time.Duration(l.limit)))
	}
	return Result{Allowed: allowed, Limit: l.limit, Remaining: remaining, ResetAt: resetAt}, nil
}

// sweep drops buckets idle for a whole window; they would be full again anyway.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.window {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// RateLimit rejects clients that exceed the limiter's budget with 429.
// Limiter failures let the request through.
func RateLimit(limiter Limiter, message string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	body, _ := json.Marshal(map[string]string{"error": message})

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			checkCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			res, err := limiter.Allow(checkCtx, ctx.RemoteIP().String())
			cancel()
			if err != nil {
				logger.Error("rate limit check failed", zap.Error(err))
				next(ctx)
				return
			}

			reset := int(time.Until(res.ResetAt).Round(time.Second).Seconds())
			if reset < 0 {
				reset = 0
			}
			ctx.Response.Header.Set("RateLimit-Limit", strconv.Itoa(res.Limit))
			ctx.Response.Header.Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
			ctx.Response.Header.Set("RateLimit-Reset", strconv.Itoa(reset))

			if !res.Allowed {
				ctx.Response.Header.Set("Retry-After", strconv.Itoa(reset))
				ctx.Response.Header.SetContentType("application/json")
				ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
				ctx.SetBody(body)
				return
			}
			next(ctx)
		}
	}
}
