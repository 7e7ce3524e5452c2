package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ovidb/centavo/centavo-backend/internal/domain"
	"github.com/ovidb/centavo/centavo-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
}

// UpdateTransactionRequest represents the update transaction request body
type UpdateTransactionRequest struct {
	Type        *string `json:"type,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	transaction, err := h.transactionService.CreateTransaction(service.CreateTransactionInput{
		Type:        domain.TransactionType(req.Type),
		Amount:      amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		return transactionErrorResponse(c, err, "Failed to create transaction")
	}

	return c.JSON(http.StatusCreated, transaction)
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	filters := &domain.TransactionFilters{}
	hasFilters := false

	if category := c.QueryParam("category"); category != "" {
		filters.Category = &category
		hasFilters = true
	}
	if txType := c.QueryParam("type"); txType != "" {
		parsed := domain.TransactionType(txType)
		if !parsed.IsValid() {
			return NewValidationError(c, "Invalid type", []ValidationError{
				{Field: "type", Message: "Must be income or expense"},
			})
		}
		filters.Type = &parsed
		hasFilters = true
	}
	if start := c.QueryParam("startDate"); start != "" {
		parsed, err := time.Parse("2006-01-02", start)
		if err != nil {
			return NewValidationError(c, "Invalid startDate", nil)
		}
		filters.StartDate = &parsed
		hasFilters = true
	}
	if end := c.QueryParam("endDate"); end != "" {
		parsed, err := time.Parse("2006-01-02", end)
		if err != nil {
			return NewValidationError(c, "Invalid endDate", nil)
		}
		filters.EndDate = &parsed
		hasFilters = true
	}

	if !hasFilters {
		filters = nil
	}

	transactions, err := h.transactionService.GetTransactions(filters)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get transactions")
		return NewInternalError(c, "Failed to get transactions")
	}

	return c.JSON(http.StatusOK, transactions)
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	transaction, err := h.transactionService.GetTransactionByID(c.Param("id"))
	if err != nil {
		return transactionErrorResponse(c, err, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, transaction)
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	id := c.Param("id")

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateTransactionInput{
		Description: req.Description,
	}

	if req.Type != nil {
		parsed := domain.TransactionType(*req.Type)
		input.Type = &parsed
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Must be a valid decimal number"},
			})
		}
		input.Amount = &amount
	}
	if req.Category != nil {
		input.Category = req.Category
	}
	if req.Date != nil {
		date, err := parseOptionalDate(req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		input.Date = date
	}

	transaction, err := h.transactionService.UpdateTransaction(id, input)
	if err != nil {
		return transactionErrorResponse(c, err, "Failed to update transaction")
	}

	return c.JSON(http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	id := c.Param("id")

	if err := h.transactionService.DeleteTransaction(id); err != nil {
		return transactionErrorResponse(c, err, "Failed to delete transaction")
	}

	return c.NoContent(http.StatusNoContent)
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func transactionErrorResponse(c echo.Context, err error, internalDetail string) error {
	switch {
	case errors.Is(err, domain.ErrTransactionNotFound):
		return NewNotFoundError(c, "Transaction not found")
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidType),
		errors.Is(err, domain.ErrCategoryRequired):
		return NewValidationError(c, err.Error(), nil)
	default:
		log.Error().Err(err).Msg(internalDetail)
		return NewInternalError(c, internalDetail)
	}
}
