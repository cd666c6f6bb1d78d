package api

import (
	"AstroPulse/internal/domain/models"
	"AstroPulse/internal/risk"
	xhttp "AstroPulse/pkg/http"
	xlogger "AstroPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RiskHandler exposes position sizing and the runtime risk settings.
type RiskHandler struct {
	logger *xlogger.Logger
	sizer  *risk.Sizer
}

func NewRiskHandler(logger *xlogger.Logger, sizer *risk.Sizer) *RiskHandler {
	return &RiskHandler{logger: logger, sizer: sizer}
}

func (h *RiskHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/risk")
	g.POST("/position-size", h.PositionSize)
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
}

func (h *RiskHandler) PositionSize(c echo.Context) error {
	req := &models.PositionSizeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res := h.sizer.Calculate(req.Prediction, req.Confidence, req.CurrentPrice, req.AccountBalance, req.PriceHistory)
	return xhttp.SuccessResponse(c, res)
}

func (h *RiskHandler) GetSettings(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.sizer.Settings())
}

func (h *RiskHandler) UpdateSettings(c echo.Context) error {
	req := &models.RiskSettingsPatch{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	updated := h.sizer.UpdateSettings(*req)
	h.logger.Info("risk settings updated", xlogger.Any("settings", updated))
	return xhttp.SuccessResponse(c, updated)
}
