package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalError       = errors.New("internal error")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidPeriod       = errors.New("invalid budget period")
	ErrInvalidDateRange    = errors.New("start date must not be after end date")
	ErrCategoryRequired    = errors.New("category is required")
	ErrNameRequired        = errors.New("name is required")
	ErrNameTooLong         = errors.New("name exceeds maximum length")
	ErrCategoryInUse       = errors.New("category is referenced by budgets")
)

// Validation constants
const (
	MaxCategoryNameLength = 255
)
