package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/ovidb/centavo/centavo-backend/internal/domain"
	"github.com/ovidb/centavo/centavo-backend/internal/websocket"
)

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo   domain.CategoryRepository
	budgetRepo     domain.BudgetRepository
	eventPublisher websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository, budgetRepo domain.BudgetRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		budgetRepo:   budgetRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CategoryService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}

	if existing, err := s.categoryRepo.GetByName(name); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	category := &domain.Category{
		ID:   uuid.New().String(),
		Name: name,
	}

	created, err := s.categoryRepo.Create(category)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.CategoryCreated(created))
	return created, nil
}

// GetCategories retrieves all categories
func (s *CategoryService) GetCategories() ([]*domain.Category, error) {
	return s.categoryRepo.GetAll()
}

// GetCategoryByID retrieves a category by ID
func (s *CategoryService) GetCategoryByID(id string) (*domain.Category, error) {
	return s.categoryRepo.GetByID(id)
}

// UpdateCategory updates a category's name
func (s *CategoryService) UpdateCategory(id string, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}

	updated, err := s.categoryRepo.Update(id, name)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.CategoryUpdated(updated))
	return updated, nil
}

// DeleteCategory deletes a category. Deletion is blocked while budgets still
// reference the category name.
func (s *CategoryService) DeleteCategory(id string) error {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return err
	}

	count, err := s.budgetRepo.CountByCategory(category.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		return err
	}

	s.publishEvent(websocket.CategoryDeleted(category))
	return nil
}
