package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-stock-alerts/internal/alerts/dto"
	"golang-stock-alerts/internal/alerts/service"
	"golang-stock-alerts/pkg/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// HeaderUserID carries the authenticated owner's id. Token verification
// happens upstream of this service.
const HeaderUserID = "X-User-ID"

// AlertHandler handles HTTP requests for alerts.
type AlertHandler struct {
	alertService service.AlertService
	logger       *logger.Logger
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertService service.AlertService, logger *logger.Logger) *AlertHandler {
	return &AlertHandler{alertService: alertService, logger: logger}
}

// RegisterRoutes registers the alert routes to the Echo group.
func (h *AlertHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateAlert)
	g.GET("", h.GetAlerts)
	g.GET("/:id", h.GetAlertByID)
	g.GET("/:id/notifications", h.GetAlertNotifications)
	g.DELETE("/:id", h.DeleteAlert)
}

func ownerID(c echo.Context) (uint, error) {
	raw := c.Request().Header.Get(HeaderUserID)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.New("missing or invalid " + HeaderUserID + " header")
	}
	return uint(id), nil
}

// CreateAlert godoc
// @Summary Create a new alert
// @Description Create a price alert for the calling user
// @Tags alerts
// @Accept  json
// @Produce  json
// @Param   alert  body    dto.CreateAlertRequest   true    "Alert to create"
// @Success 201 {object} dto.AlertResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /alerts [post]
func (h *AlertHandler) CreateAlert(c echo.Context) error {
	userID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var req dto.CreateAlertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	alertResponse, err := h.alertService.CreateAlert(c.Request().Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create alert"})
	}

	return c.JSON(http.StatusCreated, alertResponse)
}

// GetAlerts godoc
// @Summary List the calling user's alerts
// @Description List own alerts, optionally filtered by triggered state
// @Tags alerts
// @Produce  json
// @Param   triggered  query   bool  false  "Filter by triggered state"
// @Success 200 {array} dto.AlertResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /alerts [get]
func (h *AlertHandler) GetAlerts(c echo.Context) error {
	userID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var triggered *bool
	if raw := c.QueryParam("triggered"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid triggered filter"})
		}
		triggered = &parsed
	}

	alerts, err := h.alertService.GetAlerts(c.Request().Context(), userID, triggered)
	if err != nil {
		h.logger.Error("Failed to list alerts", logger.ErrorField(err), logger.IntField("user_id", int(userID)))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list alerts"})
	}

	return c.JSON(http.StatusOK, alerts)
}

// GetAlertByID godoc
// @Summary Get an alert by ID
// @Description Get a single alert owned by the calling user
// @Tags alerts
// @Produce  json
// @Param   id  path    int true    "Alert ID"
// @Success 200 {object} dto.AlertResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /alerts/{id} [get]
func (h *AlertHandler) GetAlertByID(c echo.Context) error {
	userID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid alert ID"})
	}

	alertResponse, err := h.alertService.GetAlertByID(c.Request().Context(), userID, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Alert not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get alert"})
	}

	return c.JSON(http.StatusOK, alertResponse)
}

// GetAlertNotifications godoc
// @Summary List an alert's notifications
// @Description List delivery outcomes for an alert owned by the calling user
// @Tags alerts
// @Produce  json
// @Param   id  path    int true    "Alert ID"
// @Success 200 {array} dto.NotificationLogResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /alerts/{id}/notifications [get]
func (h *AlertHandler) GetAlertNotifications(c echo.Context) error {
	userID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid alert ID"})
	}

	logs, err := h.alertService.GetAlertNotifications(c.Request().Context(), userID, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Alert not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list notifications"})
	}

	return c.JSON(http.StatusOK, logs)
}

// DeleteAlert godoc
// @Summary Delete an alert
// @Description Delete an alert owned by the calling user
// @Tags alerts
// @Produce  json
// @Param   id  path    int true    "Alert ID"
// @Success 204 {object} nil
// @Failure 404 {object} dto.ErrorResponse
// @Router /alerts/{id} [delete]
func (h *AlertHandler) DeleteAlert(c echo.Context) error {
	userID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid alert ID"})
	}

	if err := h.alertService.DeleteAlert(c.Request().Context(), userID, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Alert not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete alert"})
	}

	return c.NoContent(http.StatusNoContent)
}
