package api

import (
	"context"
	"sync"
	"time"

	domrepo "AstroPulse/internal/domain/repository"
	"AstroPulse/internal/services/notify"
	xhttp "AstroPulse/pkg/http"
	xlogger "AstroPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// LogRing buffers the most recent aggregated log entries in memory so the
// system endpoint can serve them. It plugs into the logger's collector as
// its publish target.
type LogRing struct {
	mu      sync.Mutex
	entries []xlogger.AggregatedLogEntry
	max     int
}

func NewLogRing(max int) *LogRing {
	if max <= 0 {
		max = 500
	}
	return &LogRing{max: max}
}

// PublishMessage implements logger.Publisher.
func (r *LogRing) PublishMessage(_ context.Context, _ string, payload interface{}) error {
	logs, ok := payload.([]xlogger.AggregatedLogEntry)
	if !ok {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logs...)
	if over := len(r.entries) - r.max; over > 0 {
		r.entries = r.entries[over:]
	}
	return nil
}

// Recent returns up to limit entries, newest last.
func (r *LogRing) Recent(limit int) []xlogger.AggregatedLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.entries) {
		limit = len(r.entries)
	}
	out := make([]xlogger.AggregatedLogEntry, limit)
	copy(out, r.entries[len(r.entries)-limit:])
	return out
}

// SystemHandler serves health, recent logs, and the alert WebSocket feed.
type SystemHandler struct {
	logger *xlogger.Logger
	store  domrepo.HistoryStore
	hub    *notify.WSHub
	ring   *LogRing
	start  time.Time
}

func NewSystemHandler(logger *xlogger.Logger, store domrepo.HistoryStore, hub *notify.WSHub, ring *LogRing) *SystemHandler {
	return &SystemHandler{logger: logger, store: store, hub: hub, ring: ring, start: time.Now()}
}

func (h *SystemHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/api/system/logs", h.Logs)
	if h.hub != nil {
		e.GET("/ws/alerts", h.AlertsWS)
	}
}

func (h *SystemHandler) Health(c echo.Context) error {
	status := map[string]interface{}{
		"status":     "ok",
		"uptime_s":   int(time.Since(h.start).Seconds()),
		"ws_clients": 0,
	}
	if h.hub != nil {
		status["ws_clients"] = h.hub.ClientCount()
	}
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			status["status"] = "degraded"
			status["storage"] = err.Error()
		}
	}
	return xhttp.SuccessResponse(c, status)
}

func (h *SystemHandler) Logs(c echo.Context) error {
	if h.ring == nil {
		return xhttp.ListResponse(c, []xlogger.AggregatedLogEntry{}, 0)
	}
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 100)
	logs := h.ring.Recent(limit)
	return xhttp.ListResponse(c, logs, int64(len(logs)))
}

func (h *SystemHandler) AlertsWS(c echo.Context) error {
	return h.hub.Serve(c.Response(), c.Request())
}
