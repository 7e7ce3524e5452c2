package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ovidb/centavo/centavo-backend/internal/domain"
	"github.com/ovidb/centavo/centavo-backend/internal/websocket"
)

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[string]*domain.Transaction
	GetAllFn     func() ([]*domain.Transaction, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[string]*domain.Transaction),
	}
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(tx *domain.Transaction) (*domain.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	m.Transactions[tx.ID] = tx
	return tx, nil
}

// GetByID retrieves a transaction by ID
func (m *MockTransactionRepository) GetByID(id string) (*domain.Transaction, error) {
	if tx, ok := m.Transactions[id]; ok {
		return tx, nil
	}
	return nil, domain.ErrTransactionNotFound
}

// GetAll retrieves all transactions
func (m *MockTransactionRepository) GetAll() ([]*domain.Transaction, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn()
	}
	result := make([]*domain.Transaction, 0, len(m.Transactions))
	for _, tx := range m.Transactions {
		result = append(result, tx)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetFiltered retrieves transactions matching the filters
func (m *MockTransactionRepository) GetFiltered(filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	all, err := m.GetAll()
	if err != nil {
		return nil, err
	}
	if filters == nil {
		return all, nil
	}
	result := make([]*domain.Transaction, 0, len(all))
	for _, tx := range all {
		if filters.Category != nil && tx.Category != *filters.Category {
			continue
		}
		if filters.Type != nil && tx.Type != *filters.Type {
			continue
		}
		if filters.StartDate != nil && tx.Date.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && tx.Date.After(*filters.EndDate) {
			continue
		}
		result = append(result, tx)
	}
	return result, nil
}

// Update updates an existing transaction
func (m *MockTransactionRepository) Update(tx *domain.Transaction) (*domain.Transaction, error) {
	if _, ok := m.Transactions[tx.ID]; !ok {
		return nil, domain.ErrTransactionNotFound
	}
	m.Transactions[tx.ID] = tx
	return tx, nil
}

// Delete deletes a transaction
func (m *MockTransactionRepository) Delete(id string) error {
	if _, ok := m.Transactions[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(tx *domain.Transaction) {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	m.Transactions[tx.ID] = tx
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets            map[string]*domain.Budget
	GetCurrentActiveFn func() ([]*domain.Budget, error)
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[string]*domain.Budget),
	}
}

// Create creates a new budget
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget by ID
func (m *MockBudgetRepository) GetByID(id string) (*domain.Budget, error) {
	if budget, ok := m.Budgets[id]; ok {
		return budget, nil
	}
	return nil, domain.ErrBudgetNotFound
}

// GetAll retrieves all budgets
func (m *MockBudgetRepository) GetAll() ([]*domain.Budget, error) {
	result := make([]*domain.Budget, 0, len(m.Budgets))
	for _, budget := range m.Budgets {
		result = append(result, budget)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetCurrentActive retrieves budgets whose period covers the present moment
func (m *MockBudgetRepository) GetCurrentActive() ([]*domain.Budget, error) {
	if m.GetCurrentActiveFn != nil {
		return m.GetCurrentActiveFn()
	}
	all, err := m.GetAll()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	result := make([]*domain.Budget, 0, len(all))
	for _, budget := range all {
		if budget.IsCurrent(now) {
			result = append(result, budget)
		}
	}
	return result, nil
}

// Update updates an existing budget
func (m *MockBudgetRepository) Update(budget *domain.Budget) (*domain.Budget, error) {
	if _, ok := m.Budgets[budget.ID]; !ok {
		return nil, domain.ErrBudgetNotFound
	}
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// Delete deletes a budget
func (m *MockBudgetRepository) Delete(id string) error {
	if _, ok := m.Budgets[id]; !ok {
		return domain.ErrBudgetNotFound
	}
	delete(m.Budgets, id)
	return nil
}

// CountByCategory counts budgets referencing the given category
func (m *MockBudgetRepository) CountByCategory(category string) (int64, error) {
	var count int64
	for _, budget := range m.Budgets {
		if budget.Category == category {
			count++
		}
	}
	return count, nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	m.Budgets[budget.ID] = budget
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[string]*domain.Category
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[string]*domain.Category),
	}
}

// Create creates a new category
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a category by ID
func (m *MockCategoryRepository) GetByID(id string) (*domain.Category, error) {
	if category, ok := m.Categories[id]; ok {
		return category, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// GetByName retrieves a category by name
func (m *MockCategoryRepository) GetByName(name string) (*domain.Category, error) {
	for _, category := range m.Categories {
		if category.Name == name {
			return category, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// GetAll retrieves all categories
func (m *MockCategoryRepository) GetAll() ([]*domain.Category, error) {
	result := make([]*domain.Category, 0, len(m.Categories))
	for _, category := range m.Categories {
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Update updates a category's name
func (m *MockCategoryRepository) Update(id string, name string) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	category.Name = name
	return category, nil
}

// Delete deletes a category
func (m *MockCategoryRepository) Delete(id string) error {
	if _, ok := m.Categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	return nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	m.Categories[category.ID] = category
}

// MockAlertStateRepository is a mock implementation of domain.AlertStateRepository
type MockAlertStateRepository struct {
	Active    []*domain.Alert
	Dismissed []string
	History   map[string]domain.BudgetState

	LoadFn             func() (*domain.AlertState, error)
	SaveActiveAlertsFn func(alerts []*domain.Alert) error
	SaveDismissedIDsFn func(ids []string) error
	SaveHistoryFn      func(history map[string]domain.BudgetState) error

	SaveActiveCalls    int
	SaveDismissedCalls int
	SaveHistoryCalls   int
}

// NewMockAlertStateRepository creates a new MockAlertStateRepository
func NewMockAlertStateRepository() *MockAlertStateRepository {
	return &MockAlertStateRepository{
		History: make(map[string]domain.BudgetState),
	}
}

// Load retrieves the persisted alert state
func (m *MockAlertStateRepository) Load() (*domain.AlertState, error) {
	if m.LoadFn != nil {
		return m.LoadFn()
	}
	return &domain.AlertState{
		ActiveAlerts: m.Active,
		DismissedIDs: m.Dismissed,
		History:      m.History,
	}, nil
}

// SaveActiveAlerts persists the live alert list
func (m *MockAlertStateRepository) SaveActiveAlerts(alerts []*domain.Alert) error {
	m.SaveActiveCalls++
	if m.SaveActiveAlertsFn != nil {
		return m.SaveActiveAlertsFn(alerts)
	}
	m.Active = alerts
	return nil
}

// SaveDismissedIDs persists the dismissed alert ids
func (m *MockAlertStateRepository) SaveDismissedIDs(ids []string) error {
	m.SaveDismissedCalls++
	if m.SaveDismissedIDsFn != nil {
		return m.SaveDismissedIDsFn(ids)
	}
	m.Dismissed = ids
	return nil
}

// SaveHistory persists the per-budget classification history
func (m *MockAlertStateRepository) SaveHistory(history map[string]domain.BudgetState) error {
	m.SaveHistoryCalls++
	if m.SaveHistoryFn != nil {
		return m.SaveHistoryFn(history)
	}
	m.History = history
	return nil
}

// Reset clears all persisted alert state
func (m *MockAlertStateRepository) Reset() error {
	m.Active = nil
	m.Dismissed = nil
	m.History = make(map[string]domain.BudgetState)
	return nil
}

// MockEventPublisher records published events (helper for tests)
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []websocket.Event
}

// Publish records the event
func (m *MockEventPublisher) Publish(event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// PublishedEvents returns a copy of the recorded events
func (m *MockEventPublisher) PublishedEvents() []websocket.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]websocket.Event, len(m.Events))
	copy(result, m.Events)
	return result
}
