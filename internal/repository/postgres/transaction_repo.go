package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ovidb/centavo/centavo-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = "id, type, amount, category, description, date, created_at, updated_at"

// Create inserts a new transaction
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (id, type, amount, category, description, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+transactionColumns,
		transaction.ID, string(transaction.Type), amount, transaction.Category, transaction.Description, transaction.Date)

	return scanTransaction(row)
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepository) GetByID(id string) (*domain.Transaction, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)

	transaction, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, err
}

// GetAll retrieves the full transaction set
func (r *TransactionRepository) GetAll() ([]*domain.Transaction, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetFiltered retrieves transactions matching the given filters
func (r *TransactionRepository) GetFiltered(filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	ctx := context.Background()

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE TRUE`
	args := []interface{}{}

	if filters.Category != nil {
		args = append(args, *filters.Category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}
	if filters.Type != nil {
		args = append(args, string(*filters.Type))
		query += ` AND type = $` + strconv.Itoa(len(args))
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		query += ` AND date >= $` + strconv.Itoa(len(args))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		query += ` AND date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Update updates an existing transaction
func (r *TransactionRepository) Update(transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE transactions
		SET type = $2, amount = $3, category = $4, description = $5, date = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+transactionColumns,
		transaction.ID, string(transaction.Type), amount, transaction.Category, transaction.Description, transaction.Date)

	updated, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	return updated, err
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(id string) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var t domain.Transaction
	var txType string
	var amount pgtype.Numeric

	err := row.Scan(&t.ID, &txType, &amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.Type = domain.TransactionType(txType)
	t.Amount = pgNumericToDecimal(amount)
	return &t, nil
}

func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	transactions := []*domain.Transaction{}
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	if n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

