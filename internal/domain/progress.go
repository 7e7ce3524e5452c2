package domain

import "github.com/shopspring/decimal"

type BudgetStatus string

const (
	BudgetStatusGood     BudgetStatus = "good"
	BudgetStatusWarning  BudgetStatus = "warning"
	BudgetStatusExceeded BudgetStatus = "exceeded"
)

// BudgetProgress is derived data: it is recomputed wholesale on every pass and
// never mutated in place.
type BudgetProgress struct {
	BudgetID     string          `json:"budgetId"`
	Category     string          `json:"category"`
	BudgetAmount decimal.Decimal `json:"budgetAmount"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	Percentage   decimal.Decimal `json:"percentage"`
	IsExceeded   bool            `json:"isExceeded"`
	IsNearLimit  bool            `json:"isNearLimit"`
	Status       BudgetStatus    `json:"status"`
}
