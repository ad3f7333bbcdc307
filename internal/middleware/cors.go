package middleware

import (
	"github.com/valyala/fasthttp"
)

const (
	corsAllowMethods = "GET,HEAD,PUT,PATCH,POST,DELETE"
	corsAllowHeaders = "Origin, Content-Type, Accept, Authorization, X-Request-ID"
)

// CORS reflects allow-listed origins with credentials enabled and answers
// preflight requests with 204.
func CORS(allowedOrigins []string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek(fasthttp.HeaderOrigin))
			_, ok := allowed[origin]
			if ok {
				ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowOrigin, origin)
				ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowCredentials, "true")
				ctx.Response.Header.Add(fasthttp.HeaderVary, "Origin")
			}

			preflight := ctx.IsOptions() && len(ctx.Request.Header.Peek(fasthttp.HeaderAccessControlRequestMethod)) > 0
			if !preflight {
				next(ctx)
				return
			}

			if ok {
				ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowMethods, corsAllowMethods)
				if requested := ctx.Request.Header.Peek(fasthttp.HeaderAccessControlRequestHeaders); len(requested) > 0 {
					ctx.Response.Header.SetBytesV(fasthttp.HeaderAccessControlAllowHeaders, requested)
				} else {
					ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowHeaders, corsAllowHeaders)
				}
			}
			ctx.SetStatusCode(fasthttp.StatusNoContent)
		}
	}
}
