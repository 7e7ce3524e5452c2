package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ovidb/centavo/centavo-backend/internal/service"
	"github.com/ovidb/centavo/centavo-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// AlertHandler handles alert-related HTTP requests
type AlertHandler struct {
	alertService   *service.AlertService
	eventPublisher websocket.EventPublisher
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// SetEventPublisher sets the event publisher for real-time updates
func (h *AlertHandler) SetEventPublisher(publisher websocket.EventPublisher) {
	h.eventPublisher = publisher
}

// GetAlerts handles GET /api/v1/alerts
func (h *AlertHandler) GetAlerts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.alertService.GetActiveAlerts())
}

// DismissAlert handles POST /api/v1/alerts/:id/dismiss
func (h *AlertHandler) DismissAlert(c echo.Context) error {
	id := c.Param("id")

	h.alertService.Dismiss(id)

	if h.eventPublisher != nil {
		h.eventPublisher.Publish(websocket.AlertDismissed(map[string]string{"id": id}))
	}

	return c.NoContent(http.StatusNoContent)
}

// ResetAlerts handles DELETE /api/v1/alerts. Clears alerts, dismissals, and
// classification history. Support tooling only.
func (h *AlertHandler) ResetAlerts(c echo.Context) error {
	if err := h.alertService.Reset(); err != nil {
		log.Error().Err(err).Msg("Failed to reset alert state")
		return NewInternalError(c, "Failed to reset alert state")
	}

	return c.NoContent(http.StatusNoContent)
}
