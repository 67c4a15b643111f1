package domain

import (
	"context"
	"time"
)

// Category groups events. EventCount is computed on read.
// swagger:model Category
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	Color       *string   `json:"color,omitempty"`
	EventCount  int       `json:"event_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryInput carries the writable fields of a category.
type CategoryInput struct {
	Name        string
	Description *string
	Icon        *string
	Color       *string
}

// CategoryRepository defines the interface for category storage
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	ListByNameContaining(ctx context.Context, name string) ([]*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// CategoryService defines category management.
type CategoryService interface {
	Create(ctx context.Context, in CategoryInput) (*Category, error)
	Update(ctx context.Context, id int64, in CategoryInput) (*Category, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	// ListByNameContaining matches case-insensitively; an empty name lists all.
	ListByNameContaining(ctx context.Context, name string) ([]*Category, error)
	Count(ctx context.Context) (int, error)
}
