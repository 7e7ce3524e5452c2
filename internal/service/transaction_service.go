package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ovidb/centavo/centavo-backend/internal/domain"
	"github.com/ovidb/centavo/centavo-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	coordinator     *RecomputeCoordinator
	eventPublisher  websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, coordinator *RecomputeCoordinator) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		coordinator:     coordinator,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TransactionService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        *time.Time
}

// CreateTransaction creates a new transaction with validation
func (s *TransactionService) CreateTransaction(input CreateTransactionInput) (*domain.Transaction, error) {
	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidType
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, domain.ErrCategoryRequired
	}

	// Default date to today if not provided
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if input.Date != nil {
		date = *input.Date
	}

	transaction := &domain.Transaction{
		ID:          uuid.New().String(),
		Type:        input.Type,
		Amount:      input.Amount,
		Category:    category,
		Description: strings.TrimSpace(input.Description),
		Date:        date,
	}

	created, err := s.transactionRepo.Create(transaction)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.TransactionCreated(created))
	s.coordinator.NotifyMutationCompleted("transaction_created")
	return created, nil
}

// GetTransactions retrieves transactions, optionally filtered
func (s *TransactionService) GetTransactions(filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	if filters == nil {
		return s.transactionRepo.GetAll()
	}
	return s.transactionRepo.GetFiltered(filters)
}

// GetTransactionByID retrieves a transaction by ID
func (s *TransactionService) GetTransactionByID(id string) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(id)
}

// UpdateTransactionInput holds the input for updating a transaction
type UpdateTransactionInput struct {
	Type        *domain.TransactionType
	Amount      *decimal.Decimal
	Category    *string
	Description *string
	Date        *time.Time
}

// UpdateTransaction updates an existing transaction with validation
func (s *TransactionService) UpdateTransaction(id string, input UpdateTransactionInput) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, domain.ErrInvalidType
		}
		transaction.Type = *input.Type
	}
	if input.Amount != nil {
		if input.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrInvalidAmount
		}
		transaction.Amount = *input.Amount
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, domain.ErrCategoryRequired
		}
		transaction.Category = category
	}
	if input.Description != nil {
		transaction.Description = strings.TrimSpace(*input.Description)
	}
	if input.Date != nil {
		transaction.Date = *input.Date
	}

	updated, err := s.transactionRepo.Update(transaction)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.TransactionUpdated(updated))
	s.coordinator.NotifyMutationCompleted("transaction_updated")
	return updated, nil
}

// DeleteTransaction deletes a transaction
func (s *TransactionService) DeleteTransaction(id string) error {
	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.transactionRepo.Delete(id); err != nil {
		return err
	}

	s.publishEvent(websocket.TransactionDeleted(transaction))
	s.coordinator.NotifyMutationCompleted("transaction_deleted")
	return nil
}
