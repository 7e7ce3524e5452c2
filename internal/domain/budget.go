package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BudgetPeriod string

const (
	BudgetPeriodWeekly    BudgetPeriod = "weekly"
	BudgetPeriodMonthly   BudgetPeriod = "monthly"
	BudgetPeriodQuarterly BudgetPeriod = "quarterly"
	BudgetPeriodYearly    BudgetPeriod = "yearly"
)

// IsValid reports whether the budget period is one of the known values.
func (p BudgetPeriod) IsValid() bool {
	switch p {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodQuarterly, BudgetPeriodYearly:
		return true
	}
	return false
}

type Budget struct {
	ID           string          `json:"id"`
	Category     string          `json:"category"`
	BudgetAmount decimal.Decimal `json:"budgetAmount"`
	Period       BudgetPeriod    `json:"period"`
	StartDate    time.Time       `json:"startDate"`
	EndDate      *time.Time      `json:"endDate,omitempty"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// IsCurrent reports whether the budget is active and its period covers the given instant.
// A nil EndDate means the budget is open-ended.
func (b *Budget) IsCurrent(now time.Time) bool {
	if !b.IsActive {
		return false
	}
	if b.StartDate.After(now) {
		return false
	}
	if b.EndDate != nil && now.After(*b.EndDate) {
		return false
	}
	return true
}

// ContainsDate reports whether a transaction date falls inside the budget's
// period, bounds inclusive. A nil EndDate leaves the upper bound unbounded.
func (b *Budget) ContainsDate(date time.Time) bool {
	if date.Before(b.StartDate) {
		return false
	}
	if b.EndDate != nil && date.After(*b.EndDate) {
		return false
	}
	return true
}

type BudgetRepository interface {
	Create(budget *Budget) (*Budget, error)
	GetByID(id string) (*Budget, error)
	GetAll() ([]*Budget, error)
	GetCurrentActive() ([]*Budget, error)
	Update(budget *Budget) (*Budget, error)
	Delete(id string) error
	CountByCategory(category string) (int64, error)
}
