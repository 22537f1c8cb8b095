package repositories

import (
	"context"

	"loja/internal/models"
	"loja/internal/query"
)

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	Search(ctx context.Context, filter query.CategoryFilter, page query.Pagination) ([]models.Category, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id uint, fields map[string]any) error
	// Delete removes the category and returns the ids of the products that
	// were linked to it.
	Delete(ctx context.Context, id uint) ([]uint, error)
}
