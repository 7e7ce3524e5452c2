package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ovidb/centavo/centavo-backend/internal/domain"
	"github.com/ovidb/centavo/centavo-backend/internal/util"
	"github.com/ovidb/centavo/centavo-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget-related business logic
type BudgetService struct {
	budgetRepo     domain.BudgetRepository
	coordinator    *RecomputeCoordinator
	eventPublisher websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, coordinator *RecomputeCoordinator) *BudgetService {
	return &BudgetService{
		budgetRepo:  budgetRepo,
		coordinator: coordinator,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BudgetService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// CreateBudgetInput holds the input for creating a budget
type CreateBudgetInput struct {
	Category     string
	BudgetAmount decimal.Decimal
	Period       domain.BudgetPeriod
	StartDate    *time.Time
	EndDate      *time.Time
	IsActive     *bool
}

// CreateBudget creates a new budget with validation. When no end date is
// given, one period length from the start date is used.
func (s *BudgetService) CreateBudget(input CreateBudgetInput) (*domain.Budget, error) {
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, domain.ErrCategoryRequired
	}
	if input.BudgetAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if !input.Period.IsValid() {
		return nil, domain.ErrInvalidPeriod
	}

	startDate := util.StartOfDay(time.Now().UTC())
	if input.StartDate != nil {
		startDate = *input.StartDate
	}

	endDate := input.EndDate
	if endDate == nil {
		derived := util.PeriodEnd(startDate, input.Period)
		endDate = &derived
	}
	if startDate.After(*endDate) {
		return nil, domain.ErrInvalidDateRange
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	budget := &domain.Budget{
		ID:           uuid.New().String(),
		Category:     category,
		BudgetAmount: input.BudgetAmount,
		Period:       input.Period,
		StartDate:    startDate,
		EndDate:      endDate,
		IsActive:     isActive,
	}

	created, err := s.budgetRepo.Create(budget)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.BudgetCreated(created))
	s.coordinator.NotifyMutationCompleted("budget_created")
	return created, nil
}

// GetBudgets retrieves all budgets
func (s *BudgetService) GetBudgets() ([]*domain.Budget, error) {
	return s.budgetRepo.GetAll()
}

// GetBudgetByID retrieves a budget by ID
func (s *BudgetService) GetBudgetByID(id string) (*domain.Budget, error) {
	return s.budgetRepo.GetByID(id)
}

// UpdateBudgetInput holds the input for updating a budget
type UpdateBudgetInput struct {
	Category     *string
	BudgetAmount *decimal.Decimal
	Period       *domain.BudgetPeriod
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
	IsActive     *bool
}

// UpdateBudget updates an existing budget with validation
func (s *BudgetService) UpdateBudget(id string, input UpdateBudgetInput) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, domain.ErrCategoryRequired
		}
		budget.Category = category
	}
	if input.BudgetAmount != nil {
		if input.BudgetAmount.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrInvalidAmount
		}
		budget.BudgetAmount = *input.BudgetAmount
	}
	if input.Period != nil {
		if !input.Period.IsValid() {
			return nil, domain.ErrInvalidPeriod
		}
		budget.Period = *input.Period
	}
	if input.StartDate != nil {
		budget.StartDate = *input.StartDate
	}
	if input.ClearEndDate {
		budget.EndDate = nil
	} else if input.EndDate != nil {
		budget.EndDate = input.EndDate
	}
	if input.IsActive != nil {
		budget.IsActive = *input.IsActive
	}

	if budget.EndDate != nil && budget.StartDate.After(*budget.EndDate) {
		return nil, domain.ErrInvalidDateRange
	}

	updated, err := s.budgetRepo.Update(budget)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.BudgetUpdated(updated))
	s.coordinator.NotifyMutationCompleted("budget_updated")
	return updated, nil
}

// DeleteBudget deletes a budget
func (s *BudgetService) DeleteBudget(id string) error {
	budget, err := s.budgetRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.budgetRepo.Delete(id); err != nil {
		return err
	}

	s.publishEvent(websocket.BudgetDeleted(budget))
	s.coordinator.NotifyMutationCompleted("budget_deleted")
	return nil
}
