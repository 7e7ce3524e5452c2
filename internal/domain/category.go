package domain

import "time"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CategoryRepository interface {
	Create(category *Category) (*Category, error)
	GetByID(id string) (*Category, error)
	GetByName(name string) (*Category, error)
	GetAll() ([]*Category, error)
	Update(id string, name string) (*Category, error)
	Delete(id string) error
}
