package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ovidb/centavo/centavo-backend/internal/domain"
	"github.com/ovidb/centavo/centavo-backend/internal/service"
	"github.com/ovidb/centavo/centavo-backend/internal/testutil"
)

func setupAlertHandler() (*AlertHandler, *service.AlertService) {
	alertService := service.NewAlertService(testutil.NewMockAlertStateRepository(), zerolog.Nop())
	return NewAlertHandler(alertService), alertService
}

func seedAlert(alertService *service.AlertService, budgetID string) {
	history := map[string]domain.BudgetState{budgetID: domain.BudgetStateExceeded}
	alertService.ApplyRecompute(history, []*domain.Alert{{
		ID:         domain.AlertID(budgetID, domain.AlertKindExceeded),
		Kind:       domain.AlertKindExceeded,
		Severity:   domain.AlertSeverityHigh,
		BudgetID:   budgetID,
		Category:   "food",
		Message:    "over budget",
		Percentage: decimal.NewFromInt(120),
		CreatedAt:  time.Now().UTC(),
	}})
}

func TestGetAlertsHandler(t *testing.T) {
	e := echo.New()
	handler, alertService := setupAlertHandler()
	seedAlert(alertService, "b1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetAlerts(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response []*domain.Alert
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 || response[0].ID != "alert_b1_exceeded" {
		t.Errorf("Expected the seeded alert, got %v", response)
	}
}

func TestDismissAlertHandler(t *testing.T) {
	e := echo.New()
	handler, alertService := setupAlertHandler()
	seedAlert(alertService, "b1")

	publisher := &testutil.MockEventPublisher{}
	handler.SetEventPublisher(publisher)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/alert_b1_exceeded/dismiss", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("alert_b1_exceeded")

	if err := handler.DismissAlert(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if len(alertService.GetActiveAlerts()) != 0 {
		t.Error("Expected alert removed from active list")
	}
	if !alertService.IsDismissed("alert_b1_exceeded") {
		t.Error("Expected alert id in dismissed set")
	}

	events := publisher.PublishedEvents()
	if len(events) != 1 || events[0].Type != "alert.dismissed" {
		t.Errorf("Expected alert.dismissed event, got %v", events)
	}
}

func TestResetAlertsHandler(t *testing.T) {
	e := echo.New()
	handler, alertService := setupAlertHandler()
	seedAlert(alertService, "b1")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/alerts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.ResetAlerts(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if len(alertService.GetActiveAlerts()) != 0 {
		t.Error("Expected alerts cleared")
	}
}
