package api

import (
	"AstroPulse/internal/alerts"
	"AstroPulse/internal/domain/models"
	xhttp "AstroPulse/pkg/http"
	xlogger "AstroPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AlertsHandler exposes alert rule CRUD and the trigger history.
type AlertsHandler struct {
	logger *xlogger.Logger
	engine *alerts.Engine
}

func NewAlertsHandler(logger *xlogger.Logger, engine *alerts.Engine) *AlertsHandler {
	return &AlertsHandler{logger: logger, engine: engine}
}

func (h *AlertsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/alerts")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/history", h.History)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *AlertsHandler) Create(c echo.Context) error {
	req := &models.CreateAlertRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	id, err := h.engine.Create(models.AlertRule{
		Type:         models.AlertType(req.Type),
		Symbol:       req.Symbol,
		Conditions:   req.Conditions,
		Notification: req.Notification,
	})
	if err != nil {
		h.logger.Warn("alert create rejected", xlogger.Error(err))
		return xhttp.BadRequestResponse(c, err.Error())
	}
	rule, _ := h.engine.Get(id)
	return xhttp.CreatedResponse(c, rule)
}

func (h *AlertsHandler) List(c echo.Context) error {
	rules := h.engine.List()
	return xhttp.ListResponse(c, rules, int64(len(rules)))
}

func (h *AlertsHandler) Get(c echo.Context) error {
	rule, ok := h.engine.Get(c.Param("id"))
	if !ok {
		return xhttp.NotFoundResponse(c, "alert not found")
	}
	return xhttp.SuccessResponse(c, rule)
}

func (h *AlertsHandler) Update(c echo.Context) error {
	req := &models.UpdateAlertRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	patch := models.AlertRulePatch{
		Conditions:   req.Conditions,
		Notification: req.Notification,
		IsActive:     req.IsActive,
	}
	if err := h.engine.Update(c.Param("id"), patch); err != nil {
		return xhttp.NotFoundResponse(c, err.Error())
	}
	rule, _ := h.engine.Get(c.Param("id"))
	return xhttp.SuccessResponse(c, rule)
}

func (h *AlertsHandler) Delete(c echo.Context) error {
	if !h.engine.Delete(c.Param("id")) {
		return xhttp.NotFoundResponse(c, "alert not found")
	}
	return xhttp.NoContentResponse(c)
}

func (h *AlertsHandler) History(c echo.Context) error {
	req := &models.AlertHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	events := h.engine.History(req.Limit)
	return xhttp.ListResponse(c, events, int64(len(events)))
}
