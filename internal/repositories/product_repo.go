package repositories

import (
	"context"

	"loja/internal/models"
	"loja/internal/query"
)

// ProductRepository defines the interface for product data access. Every
// product read loads images, options and category links.
type ProductRepository interface {
	Search(ctx context.Context, filter query.ProductFilter, page query.Pagination) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product, categoryIDs []uint) error
	Update(ctx context.Context, id uint, update models.ProductUpdate) error
	Delete(ctx context.Context, id uint) error
}
