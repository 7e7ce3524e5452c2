package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ovidb/centavo/centavo-backend/internal/domain"
	"github.com/ovidb/centavo/centavo-backend/internal/service"
	"github.com/ovidb/centavo/centavo-backend/internal/testutil"
)

func setupBudgetHandler() (*BudgetHandler, *testutil.MockBudgetRepository, *testutil.MockTransactionRepository, *service.RecomputeCoordinator) {
	transactionRepo := testutil.NewMockTransactionRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	alertService := service.NewAlertService(testutil.NewMockAlertStateRepository(), zerolog.Nop())
	coordinator := service.NewRecomputeCoordinator(
		transactionRepo, budgetRepo, service.NewProgressService(), service.NewAlertStateTracker(),
		alertService, zerolog.Nop(), service.DefaultRecomputeCoordinatorConfig(),
	)
	budgetService := service.NewBudgetService(budgetRepo, coordinator)
	return NewBudgetHandler(budgetService, coordinator), budgetRepo, transactionRepo, coordinator
}

func TestCreateBudgetHandler_Success(t *testing.T) {
	e := echo.New()
	handler, repo, _, coordinator := setupBudgetHandler()
	defer coordinator.Stop()

	reqBody := `{"category": "food", "budgetAmount": "300.00", "period": "monthly", "startDate": "2026-03-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.CreateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response domain.Budget
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Category != "food" {
		t.Errorf("Expected category food, got %s", response.Category)
	}
	if response.EndDate == nil {
		t.Error("Expected derived end date")
	}
	if len(repo.Budgets) != 1 {
		t.Errorf("Expected 1 stored budget, got %d", len(repo.Budgets))
	}
}

func TestCreateBudgetHandler_InvalidPeriod(t *testing.T) {
	e := echo.New()
	handler, _, _, coordinator := setupBudgetHandler()
	defer coordinator.Stop()

	reqBody := `{"category": "food", "budgetAmount": "300.00", "period": "daily"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.CreateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetOverviewHandler_ReturnsLatestPass(t *testing.T) {
	e := echo.New()
	handler, budgetRepo, transactionRepo, coordinator := setupBudgetHandler()
	defer coordinator.Stop()

	start := time.Now().AddDate(0, 0, -5)
	end := start.AddDate(0, 1, -1)
	budgetRepo.AddBudget(&domain.Budget{
		ID: "b1", Category: "food", BudgetAmount: decimal.NewFromInt(100),
		Period: domain.BudgetPeriodMonthly, StartDate: start, EndDate: &end, IsActive: true,
	})
	transactionRepo.AddTransaction(&domain.Transaction{
		ID: "t1", Type: domain.TransactionTypeExpense, Amount: decimal.NewFromInt(90),
		Category: "food", Date: time.Now().AddDate(0, 0, -1),
	})
	coordinator.RecomputeNow(service.CauseStartup)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets/overview", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetOverview(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response []*domain.BudgetProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 overview entry, got %d", len(response))
	}
	if !response[0].IsNearLimit {
		t.Error("Expected budget near limit at 90%")
	}
	if response[0].Status != domain.BudgetStatusWarning {
		t.Errorf("Expected status warning, got %s", response[0].Status)
	}
}

func TestGetOverviewHandler_EmptyBeforeFirstPass(t *testing.T) {
	e := echo.New()
	handler, _, _, coordinator := setupBudgetHandler()
	defer coordinator.Stop()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets/overview", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetOverview(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("Expected empty array, got %s", body)
	}
}

func TestDeleteBudgetHandler_NotFound(t *testing.T) {
	e := echo.New()
	handler, _, _, coordinator := setupBudgetHandler()
	defer coordinator.Stop()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/budgets/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := handler.DeleteBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
