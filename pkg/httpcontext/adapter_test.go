package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Run("reuses the caller's id", func(t *testing.T) {
		ctx := &fasthttp.RequestCtx{}
		ctx.Request.Header.Set(HeaderRequestID, "abc-123")

		assert.Equal(t, "abc-123", RequestID(ctx))
		assert.Equal(t, "abc-123", string(ctx.Response.Header.Peek(HeaderRequestID)))
	})

	t.Run("generates once per request", func(t *testing.T) {
		ctx := &fasthttp.RequestCtx{}

		first := RequestID(ctx)
		assert.NotEmpty(t, first)
		assert.Equal(t, first, RequestID(ctx))
	})
}

func TestAdapter_Attach(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set(HeaderRequestID, "req-1")
	ctx.Request.Header.SetUserAgent("curl/8.0")

	stdCtx, cancel := NewAdapter(time.Second).Attach(ctx)
	defer cancel()

	deadline, ok := stdCtx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)
	assert.Equal(t, "req-1", appLogger.RequestID(stdCtx))
	assert.Equal(t, "curl/8.0", stdCtx.Value(KeyUserAgent))

	cancel()
	assert.Error(t, stdCtx.Err())
}
