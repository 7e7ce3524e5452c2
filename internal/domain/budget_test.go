package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testBudget(start time.Time, end *time.Time, active bool) *Budget {
	return &Budget{
		ID:           "b1",
		Category:     "food",
		BudgetAmount: decimal.NewFromInt(100),
		Period:       BudgetPeriodMonthly,
		StartDate:    start,
		EndDate:      end,
		IsActive:     active,
	}
}

func TestBudgetIsCurrent(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	if !testBudget(start, &end, true).IsCurrent(now) {
		t.Error("Budget covering now should be current")
	}
	if testBudget(start, &end, false).IsCurrent(now) {
		t.Error("Inactive budget is never current")
	}
	if testBudget(now.AddDate(0, 1, 0), nil, true).IsCurrent(now) {
		t.Error("Budget starting in the future is not current")
	}
	pastEnd := now.AddDate(0, -1, 0)
	if testBudget(start.AddDate(0, -2, 0), &pastEnd, true).IsCurrent(now) {
		t.Error("Budget whose period ended is not current")
	}
	if !testBudget(start, nil, true).IsCurrent(now) {
		t.Error("Open-ended budget should be current")
	}
}

func TestBudgetContainsDate(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	budget := testBudget(start, &end, true)

	// Bounds are inclusive on both sides.
	if !budget.ContainsDate(start) {
		t.Error("Start date should be inside the period")
	}
	if !budget.ContainsDate(end) {
		t.Error("End date should be inside the period")
	}
	if budget.ContainsDate(start.AddDate(0, 0, -1)) {
		t.Error("Day before start is outside the period")
	}
	if budget.ContainsDate(end.AddDate(0, 0, 1)) {
		t.Error("Day after end is outside the period")
	}

	openEnded := testBudget(start, nil, true)
	if !openEnded.ContainsDate(end.AddDate(5, 0, 0)) {
		t.Error("Open-ended budget contains any date after start")
	}
}

func TestBudgetPeriodIsValid(t *testing.T) {
	valid := []BudgetPeriod{BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodQuarterly, BudgetPeriodYearly}
	for _, p := range valid {
		if !p.IsValid() {
			t.Errorf("Expected %s to be valid", p)
		}
	}
	if BudgetPeriod("daily").IsValid() {
		t.Error("Expected daily to be invalid")
	}
}
