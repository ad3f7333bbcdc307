package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /api/health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	payload := transport.HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
	}
	if h.monitor == nil {
		h.respondJSON(ctx, http.StatusOK, payload)
		return
	}

	status := h.monitor.GetStatus()
	payload.Services = status
	if status.Store.Online {
		h.respondJSON(ctx, http.StatusOK, payload)
		return
	}
	payload.Status = "DEGRADED"
	h.respondJSON(ctx, http.StatusServiceUnavailable, payload)
}
