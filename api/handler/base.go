package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

// Error titles sent in the "error" field of failure bodies.
const (
	ErrTitleValidation = "Validation failed"
	ErrTitleConstraint = "Database Constraint Error"
	ErrTitleNotFound   = "Task not found"
	ErrTitleInternal   = "Internal server error"
	ErrTitleUnexpected = "Internal Server Error"
	ErrTitleNoRoute    = "Route not found"

	msgValidation = "Please check your input and try again"
	msgConstraint = "The operation violates database constraints"
	msgUnexpected = "Something went wrong on the server"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	writeJSON(ctx, status, payload)
}

func (h baseHandler) respondError(ctx context.Context, rc *fasthttp.RequestCtx, err error) {
	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		appLogger.WithRequestID(ctx, h.logger).Error("request failed",
			zap.ByteString("method", rc.Method()),
			zap.ByteString("path", rc.Path()),
			zap.String("response", body.String()),
			zap.Error(err),
		)
	}
	writeJSON(rc, status, body)
}

func mapError(err error) (int, transport.ErrorResponse) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, transport.ErrorResponse{
			Error:   ErrTitleValidation,
			Message: msgValidation,
			Details: vErr.Details,
		}
	}

	var dErr *domain.Error
	if !errors.As(err, &dErr) {
		return http.StatusInternalServerError, UnexpectedError()
	}

	switch dErr.Code {
	case domain.ErrCodeInvalid:
		return http.StatusBadRequest, transport.ErrorResponse{Error: ErrTitleValidation, Message: dErr.Message}
	case domain.ErrCodeConstraint:
		return http.StatusBadRequest, transport.ErrorResponse{Error: ErrTitleConstraint, Message: msgConstraint}
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, transport.ErrorResponse{Error: ErrTitleNotFound, Message: dErr.Message}
	default:
		return http.StatusInternalServerError, transport.ErrorResponse{Error: ErrTitleInternal, Message: dErr.Message}
	}
}

// UnexpectedError is the body sent when a failure carries no classification.
func UnexpectedError() transport.ErrorResponse {
	return transport.ErrorResponse{Error: ErrTitleUnexpected, Message: msgUnexpected}
}

// NotFound answers requests that match no route.
func NotFound(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, http.StatusNotFound, transport.ErrorResponse{Error: ErrTitleNoRoute})
}

// Panic returns a router panic handler that logs the value and answers 500.
func Panic(logger *zap.Logger) func(*fasthttp.RequestCtx, interface{}) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx *fasthttp.RequestCtx, recovered interface{}) {
		logger.Error("handler panic",
			zap.String("request_id", httpcontext.RequestID(ctx)),
			zap.ByteString("path", ctx.Path()),
			zap.Any("panic", recovered),
		)
		writeJSON(ctx, http.StatusInternalServerError, UnexpectedError())
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}
