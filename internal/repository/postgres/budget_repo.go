package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ovidb/centavo/centavo-backend/internal/domain"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

const budgetColumns = "id, category, budget_amount, period, start_date, end_date, is_active, created_at, updated_at"

// Create inserts a new budget
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(budget.BudgetAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (id, category, budget_amount, period, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+budgetColumns,
		budget.ID, budget.Category, amount, string(budget.Period), budget.StartDate, budget.EndDate, budget.IsActive)

	return scanBudget(row)
}

// GetByID retrieves a budget by ID
func (r *BudgetRepository) GetByID(id string) (*domain.Budget, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id)

	budget, err := scanBudget(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, err
}

// GetAll retrieves all budgets
func (r *BudgetRepository) GetAll() ([]*domain.Budget, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT `+budgetColumns+` FROM budgets ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBudgets(rows)
}

// GetCurrentActive retrieves the active budgets whose period covers now
func (r *BudgetRepository) GetCurrentActive() ([]*domain.Budget, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE is_active
		  AND start_date <= now()
		  AND (end_date IS NULL OR end_date >= now())
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBudgets(rows)
}

// Update updates an existing budget
func (r *BudgetRepository) Update(budget *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(budget.BudgetAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE budgets
		SET category = $2, budget_amount = $3, period = $4, start_date = $5, end_date = $6, is_active = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+budgetColumns,
		budget.ID, budget.Category, amount, string(budget.Period), budget.StartDate, budget.EndDate, budget.IsActive)

	updated, err := scanBudget(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBudgetNotFound
	}
	return updated, err
}

// Delete removes a budget
func (r *BudgetRepository) Delete(id string) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

// CountByCategory counts budgets referencing a category name
func (r *BudgetRepository) CountByCategory(category string) (int64, error) {
	ctx := context.Background()

	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM budgets WHERE category = $1`, category).Scan(&count)
	return count, err
}

func scanBudget(row rowScanner) (*domain.Budget, error) {
	var b domain.Budget
	var period string
	var amount pgtype.Numeric
	var endDate *time.Time

	err := row.Scan(&b.ID, &b.Category, &amount, &period, &b.StartDate, &endDate, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}

	b.Period = domain.BudgetPeriod(period)
	b.BudgetAmount = pgNumericToDecimal(amount)
	b.EndDate = endDate
	return &b, nil
}

func scanBudgets(rows pgx.Rows) ([]*domain.Budget, error) {
	budgets := []*domain.Budget{}
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}
