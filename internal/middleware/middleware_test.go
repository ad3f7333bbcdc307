package middleware

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newRequestCtx(method, uri string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	ctx.SetRemoteAddr(&net.TCPAddr{IP: net.ParseIP("10.0.0.7"), Port: 40000})
	return ctx
}

func okHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
}

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(3, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		res, err := l.Allow(context.Background(), "a")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, _ := l.Allow(context.Background(), "a")
	assert.False(t, res.Allowed)
	assert.True(t, res.ResetAt.After(now))

	other, _ := l.Allow(context.Background(), "b")
	assert.True(t, other.Allowed)

	now = now.Add(20 * time.Second)
	res, _ = l.Allow(context.Background(), "a")
	assert.True(t, res.Allowed)

	now = now.Add(2 * time.Minute)
	_, _ = l.Allow(context.Background(), "c")
	assert.Len(t, l.buckets, 1)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (Result, error) {
	return Result{}, errors.New("redis: connection refused")
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(NewMemoryLimiter(2, time.Hour), "Too many requests from this IP, please try again later.", nil)(okHandler)

	for i := 0; i < 2; i++ {
		ctx := newRequestCtx(fasthttp.MethodGet, "/api/tasks")
		handler(ctx)
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Equal(t, "2", string(ctx.Response.Header.Peek("RateLimit-Limit")))
	}

	ctx := newRequestCtx(fasthttp.MethodGet, "/api/tasks")
	handler(ctx)
	assert.Equal(t, fasthttp.StatusTooManyRequests, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"error":"Too many requests from this IP, please try again later."}`, string(ctx.Response.Body()))
	assert.NotEmpty(t, ctx.Response.Header.Peek("Retry-After"))

	t.Run("fails open", func(t *testing.T) {
		ctx := newRequestCtx(fasthttp.MethodGet, "/api/tasks")
		RateLimit(failingLimiter{}, "nope", nil)(okHandler)(ctx)
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	})
}

func TestCORS(t *testing.T) {
	mw := CORS([]string{"http://localhost:5173"})

	t.Run("allowed origin", func(t *testing.T) {
		ctx := newRequestCtx(fasthttp.MethodGet, "/api/tasks")
		ctx.Request.Header.Set(fasthttp.HeaderOrigin, "http://localhost:5173")
		mw(okHandler)(ctx)

		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Equal(t, "http://localhost:5173", string(ctx.Response.Header.Peek(fasthttp.HeaderAccessControlAllowOrigin)))
		assert.Equal(t, "true", string(ctx.Response.Header.Peek(fasthttp.HeaderAccessControlAllowCredentials)))
	})

	t.Run("foreign origin", func(t *testing.T) {
		ctx := newRequestCtx(fasthttp.MethodGet, "/api/tasks")
		ctx.Request.Header.Set(fasthttp.HeaderOrigin, "http://evil.example")
		mw(okHandler)(ctx)

		assert.Empty(t, ctx.Response.Header.Peek(fasthttp.HeaderAccessControlAllowOrigin))
	})

	t.Run("preflight", func(t *testing.T) {
		called := false
		ctx := newRequestCtx(fasthttp.MethodOptions, "/api/tasks/1")
		ctx.Request.Header.Set(fasthttp.HeaderOrigin, "http://localhost:5173")
		ctx.Request.Header.Set(fasthttp.HeaderAccessControlRequestMethod, fasthttp.MethodPut)
		mw(func(*fasthttp.RequestCtx) { called = true })(ctx)

		assert.False(t, called)
		assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Header.Peek(fasthttp.HeaderAccessControlAllowMethods)), "PUT")
	})
}

func TestSecureHeadersAndChain(t *testing.T) {
	var order []string
	tag := func(name string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return func(ctx *fasthttp.RequestCtx) {
				order = append(order, name)
				next(ctx)
			}
		}
	}

	ctx := newRequestCtx(fasthttp.MethodGet, "/api/health")
	Chain(okHandler, tag("first"), SecureHeaders, AccessLog(nil), tag("last"))(ctx)

	assert.Equal(t, []string{"first", "last"}, order)
	assert.Equal(t, "nosniff", string(ctx.Response.Header.Peek("X-Content-Type-Options")))
	assert.Equal(t, "SAMEORIGIN", string(ctx.Response.Header.Peek("X-Frame-Options")))
	assert.NotEmpty(t, ctx.Response.Header.Peek("X-Request-ID"))
}
