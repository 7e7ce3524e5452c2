package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ovidb/centavo/centavo-backend/internal/domain"
	"github.com/ovidb/centavo/centavo-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
	coordinator   *service.RecomputeCoordinator
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, coordinator *service.RecomputeCoordinator) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		coordinator:   coordinator,
	}
}

// CreateBudgetRequest represents the create budget request body
type CreateBudgetRequest struct {
	Category     string  `json:"category"`
	BudgetAmount string  `json:"budgetAmount"`
	Period       string  `json:"period"`
	StartDate    *string `json:"startDate,omitempty"`
	EndDate      *string `json:"endDate,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// UpdateBudgetRequest represents the update budget request body
type UpdateBudgetRequest struct {
	Category     *string `json:"category,omitempty"`
	BudgetAmount *string `json:"budgetAmount,omitempty"`
	Period       *string `json:"period,omitempty"`
	StartDate    *string `json:"startDate,omitempty"`
	EndDate      *string `json:"endDate,omitempty"`
	ClearEndDate bool    `json:"clearEndDate,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// CreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.BudgetAmount)
	if err != nil {
		return NewValidationError(c, "Invalid budgetAmount", []ValidationError{
			{Field: "budgetAmount", Message: "Must be a valid decimal number"},
		})
	}

	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return NewValidationError(c, "Invalid startDate", nil)
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return NewValidationError(c, "Invalid endDate", nil)
	}

	budget, err := h.budgetService.CreateBudget(service.CreateBudgetInput{
		Category:     req.Category,
		BudgetAmount: amount,
		Period:       domain.BudgetPeriod(req.Period),
		StartDate:    startDate,
		EndDate:      endDate,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return budgetErrorResponse(c, err, "Failed to create budget")
	}

	return c.JSON(http.StatusCreated, budget)
}

// GetBudgets handles GET /api/v1/budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	budgets, err := h.budgetService.GetBudgets()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get budgets")
		return NewInternalError(c, "Failed to get budgets")
	}

	return c.JSON(http.StatusOK, budgets)
}

// GetBudget handles GET /api/v1/budgets/:id
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	budget, err := h.budgetService.GetBudgetByID(c.Param("id"))
	if err != nil {
		return budgetErrorResponse(c, err, "Failed to get budget")
	}

	return c.JSON(http.StatusOK, budget)
}

// UpdateBudget handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	id := c.Param("id")

	var req UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateBudgetInput{
		Category:     req.Category,
		ClearEndDate: req.ClearEndDate,
		IsActive:     req.IsActive,
	}

	if req.BudgetAmount != nil {
		amount, err := decimal.NewFromString(*req.BudgetAmount)
		if err != nil {
			return NewValidationError(c, "Invalid budgetAmount", []ValidationError{
				{Field: "budgetAmount", Message: "Must be a valid decimal number"},
			})
		}
		input.BudgetAmount = &amount
	}
	if req.Period != nil {
		period := domain.BudgetPeriod(*req.Period)
		input.Period = &period
	}
	if req.StartDate != nil {
		startDate, err := parseOptionalDate(req.StartDate)
		if err != nil {
			return NewValidationError(c, "Invalid startDate", nil)
		}
		input.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := parseOptionalDate(req.EndDate)
		if err != nil {
			return NewValidationError(c, "Invalid endDate", nil)
		}
		input.EndDate = endDate
	}

	budget, err := h.budgetService.UpdateBudget(id, input)
	if err != nil {
		return budgetErrorResponse(c, err, "Failed to update budget")
	}

	return c.JSON(http.StatusOK, budget)
}

// DeleteBudget handles DELETE /api/v1/budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	if err := h.budgetService.DeleteBudget(c.Param("id")); err != nil {
		return budgetErrorResponse(c, err, "Failed to delete budget")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetOverview handles GET /api/v1/budgets/overview. Serves the overview
// committed by the most recent recompute pass.
func (h *BudgetHandler) GetOverview(c echo.Context) error {
	return c.JSON(http.StatusOK, h.coordinator.LatestOverview())
}

func budgetErrorResponse(c echo.Context, err error, internalDetail string) error {
	switch {
	case errors.Is(err, domain.ErrBudgetNotFound):
		return NewNotFoundError(c, "Budget not found")
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrCategoryRequired):
		return NewValidationError(c, err.Error(), nil)
	default:
		log.Error().Err(err).Msg(internalDetail)
		return NewInternalError(c, internalDetail)
	}
}
