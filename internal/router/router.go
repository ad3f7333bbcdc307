package router

import (
	"bytes"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
)

type Handlers struct {
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

// New mounts every endpoint under basePath ("" mounts at the root).
// Paths with a trailing slash are served like the path without it.
// Unmatched paths and methods share the JSON 404 body.
func New(handlers Handlers, basePath string, logger *zap.Logger) *router.Router {
	r := router.New()
	r.RedirectTrailingSlash = false
	r.HandleMethodNotAllowed = false
	r.HandleOPTIONS = false
	r.NotFound = trimTrailingSlash(r)
	r.PanicHandler = apiHandler.Panic(logger)

	r.GET(basePath+"/health", handlers.Health.Check)

	r.GET(basePath+"/tasks", handlers.Task.GetTasks)
	r.POST(basePath+"/tasks", handlers.Task.CreateTask)
	r.GET(basePath+"/tasks/{id}", handlers.Task.GetTask)
	r.PUT(basePath+"/tasks/{id}", handlers.Task.UpdateTask)
	r.DELETE(basePath+"/tasks/{id}", handlers.Task.DeleteTask)
	r.PATCH(basePath+"/tasks/{id}/toggle", handlers.Task.ToggleTask)

	return r
}

// trimTrailingSlash retries an unmatched path once without its trailing
// slashes before answering 404.
func trimTrailingSlash(r *router.Router) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		path := ctx.Path()
		trimmed := bytes.TrimRight(path, "/")
		if len(trimmed) == 0 || len(trimmed) == len(path) {
			apiHandler.NotFound(ctx)
			return
		}
		ctx.Request.URI().SetPathBytes(append([]byte(nil), trimmed...))
		r.Handler(ctx)
	}
}
