package service

import (
	"sort"
	"time"

	"github.com/ovidb/centavo/centavo-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// NearLimitThreshold is the percentage at which a budget is considered near its limit
var NearLimitThreshold = decimal.NewFromInt(80)

var oneHundred = decimal.NewFromInt(100)

// ProgressService computes budget progress from the transaction set.
// All methods are pure: inputs are never mutated and results are built fresh
// on every call.
type ProgressService struct{}

// NewProgressService creates a new ProgressService
func NewProgressService() *ProgressService {
	return &ProgressService{}
}

// ComputeProgress computes spent/remaining/percentage/status for a single budget.
// Only expense transactions in the budget's category with a date inside the
// budget's period count toward spending. A transaction with a zero date is
// treated as malformed and excluded rather than failing the whole computation.
func (s *ProgressService) ComputeProgress(budget *domain.Budget, transactions []*domain.Transaction) *domain.BudgetProgress {
	spent := decimal.Zero
	for _, tx := range transactions {
		if tx.Type != domain.TransactionTypeExpense {
			continue
		}
		if tx.Category != budget.Category {
			continue
		}
		if tx.Date.IsZero() {
			continue
		}
		if !budget.ContainsDate(tx.Date) {
			continue
		}
		spent = spent.Add(tx.Amount)
	}

	remaining := budget.BudgetAmount.Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	percentage := decimal.Zero
	if budget.BudgetAmount.IsPositive() {
		percentage = spent.Div(budget.BudgetAmount).Mul(oneHundred)
	}

	isExceeded := spent.GreaterThan(budget.BudgetAmount)
	isNearLimit := !isExceeded && percentage.GreaterThanOrEqual(NearLimitThreshold)

	status := domain.BudgetStatusGood
	if isExceeded {
		status = domain.BudgetStatusExceeded
	} else if isNearLimit {
		status = domain.BudgetStatusWarning
	}

	return &domain.BudgetProgress{
		BudgetID:     budget.ID,
		Category:     budget.Category,
		BudgetAmount: budget.BudgetAmount,
		Spent:        spent,
		Remaining:    remaining,
		Percentage:   percentage,
		IsExceeded:   isExceeded,
		IsNearLimit:  isNearLimit,
		Status:       status,
	}
}

// ComputeOverview computes progress for all currently active, in-period budgets
// and sorts the result: exceeded budgets first, then descending by percentage.
// The sort is stable, so budgets with equal (exceeded, percentage) keep their
// input order.
func (s *ProgressService) ComputeOverview(budgets []*domain.Budget, transactions []*domain.Transaction) []*domain.BudgetProgress {
	return s.ComputeOverviewAt(time.Now(), budgets, transactions)
}

// ComputeOverviewAt is ComputeOverview evaluated at a fixed instant.
func (s *ProgressService) ComputeOverviewAt(now time.Time, budgets []*domain.Budget, transactions []*domain.Transaction) []*domain.BudgetProgress {
	overview := make([]*domain.BudgetProgress, 0, len(budgets))
	for _, budget := range budgets {
		if !budget.IsCurrent(now) {
			continue
		}
		overview = append(overview, s.ComputeProgress(budget, transactions))
	}

	sort.SliceStable(overview, func(i, j int) bool {
		if overview[i].IsExceeded != overview[j].IsExceeded {
			return overview[i].IsExceeded
		}
		return overview[i].Percentage.GreaterThan(overview[j].Percentage)
	})

	return overview
}
