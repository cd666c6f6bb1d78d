package api

import (
	"context"
	"errors"
	"time"

	"AstroPulse/internal/backtest"
	"AstroPulse/internal/domain/models"
	xhttp "AstroPulse/pkg/http"
	xlogger "AstroPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// BacktestHandler runs historical replays on demand.
type BacktestHandler struct {
	logger  *xlogger.Logger
	runner  *backtest.Runner
	timeout time.Duration
}

func NewBacktestHandler(logger *xlogger.Logger, runner *backtest.Runner, timeout time.Duration) *BacktestHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &BacktestHandler{logger: logger, runner: runner, timeout: timeout}
}

func (h *BacktestHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/backtest", h.Run)
}

func (h *BacktestHandler) Run(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, ok := xhttp.ParseTime(req.From)
	if !ok {
		return xhttp.BadRequestResponse(c, "from: invalid time")
	}
	to, ok := xhttp.ParseTime(req.To)
	if !ok {
		return xhttp.BadRequestResponse(c, "to: invalid time")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	run, err := h.runner.Run(ctx, req.Symbol, from, to)
	if err != nil {
		if errors.Is(err, backtest.ErrInvalidRange) {
			return xhttp.BadRequestResponse(c, err.Error())
		}
		h.logger.Error("backtest run error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, run)
}
