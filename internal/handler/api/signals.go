package api

import (
	"encoding/json"
	"time"

	"AstroPulse/internal/domain/models"
	domrepo "AstroPulse/internal/domain/repository"
	icache "AstroPulse/internal/service/cache"
	"AstroPulse/internal/service/ratelimit"
	"AstroPulse/internal/usecase"
	xhttp "AstroPulse/pkg/http"
	xlogger "AstroPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SignalsHandler exposes on-demand evaluation and signal history over Echo.
type SignalsHandler struct {
	logger    *xlogger.Logger
	evaluator *usecase.Evaluator
	store     domrepo.HistoryStore
	cache     icache.BytesCache
	rl        *ratelimit.Limiter
}

func NewSignalsHandler(logger *xlogger.Logger, evaluator *usecase.Evaluator, store domrepo.HistoryStore) *SignalsHandler {
	return &SignalsHandler{logger: logger, evaluator: evaluator, store: store, rl: ratelimit.New()}
}

func (h *SignalsHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/signals")
	g.POST("/evaluate", h.Evaluate)
	g.GET("/history", h.History)
}

// Evaluate runs one evaluation cycle for the posted metric batch and
// returns the full result, including any alerts it fired.
func (h *SignalsHandler) Evaluate(c echo.Context) error {
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":evaluate", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("RATE_LIMITED", "", "too many requests", 429))
	}

	res, err := h.evaluator.Evaluate(c.Request().Context(), usecase.EvaluationInput{
		Symbol:  req.Symbol,
		Price:   req.Price,
		Metrics: req.Metrics,
	})
	if err != nil {
		h.logger.Error("evaluate usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// History returns persisted signals for a symbol over a time range.
func (h *SignalsHandler) History(c echo.Context) error {
	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol required")
	}
	now := time.Now().UTC()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.Add(-24*time.Hour))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)

	cacheKey := "signals:" + symbol + ":" + from.Format(time.RFC3339) + ":" + to.Format(time.RFC3339)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("signals.history cache_get_error", xlogger.Error(err))
		} else if ok {
			var rows []models.SignalRecord
			if err := json.Unmarshal(b, &rows); err == nil {
				return xhttp.ListResponse(c, rows, int64(len(rows)))
			}
		}
	}

	rows, err := h.store.GetSignals(c.Request().Context(), symbol, from, to)
	if err != nil {
		h.logger.Error("signals.history error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if h.cache != nil {
		if b, err := json.Marshal(rows); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil {
				h.logger.Warn("signals.history cache_set_error", xlogger.Error(err))
			}
		}
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}
