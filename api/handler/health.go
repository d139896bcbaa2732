package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/sessionauth/api/transport"
	"github.com/fastygo/sessionauth/domain"
	"github.com/fastygo/sessionauth/internal/infrastructure/monitor"
	"github.com/fastygo/sessionauth/pkg/httpcontext"
)

// Counter reports how many records a repository or store holds.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

type HealthHandler struct {
	baseHandler
	monitor  *monitor.Monitor
	users    Counter
	sessions Counter
}

// NewHealthHandler builds the status handler. sessions may be nil when the
// configured scheme keeps no sessions.
func NewHealthHandler(mon *monitor.Monitor, users, sessions Counter, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		users:       users,
		sessions:    sessions,
	}
}

// @Summary API status
// @Tags status
// @Router /api/v1/status [get]
func (h *HealthHandler) Status(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, transport.StatusResponse{Status: "OK"})
}

// @Summary Number of stored users and sessions
// @Tags status
// @Router /api/v1/stats [get]
func (h *HealthHandler) Stats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var stats transport.StatsResponse
	var err error
	if h.users != nil {
		if stats.Users, err = h.users.Count(stdCtx); err != nil {
			h.respondError(ctx, domain.WrapError(domain.ErrCodeInternal, "counting users", err))
			return
		}
	}
	if h.sessions != nil {
		if stats.Sessions, err = h.sessions.Count(stdCtx); err != nil {
			h.respondError(ctx, domain.WrapError(domain.ErrCodeInternal, "counting sessions", err))
			return
		}
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}

// @Summary Always answers 401
// @Tags status
// @Router /api/v1/unauthorized [get]
func (h *HealthHandler) Unauthorized(ctx *fasthttp.RequestCtx) {
	h.respondError(ctx, domain.ErrUnauthorized)
}

// @Summary Always answers 403
// @Tags status
// @Router /api/v1/forbidden [get]
func (h *HealthHandler) Forbidden(ctx *fasthttp.RequestCtx) {
	h.respondError(ctx, domain.ErrForbidden)
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	var status monitor.Status
	if h.monitor != nil {
		status = h.monitor.GetStatus()
	}
	payload := map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"services":   status.Components,
		"last_check": status.LastCheck,
	}

	if status.Healthy() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", payload))
}
