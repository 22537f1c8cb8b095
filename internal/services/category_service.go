package services

import (
	"context"

	"loja/internal/models"
	"loja/internal/query"
	"loja/internal/repositories"
)

// ProductInvalidator is told about products whose stored state changed
// outside the product endpoints.
type ProductInvalidator interface {
	ProductsChanged(ctx context.Context, ids []uint)
}

// CategoryServiceOption customizes a CategoryService.
type CategoryServiceOption func(*CategoryService)

// WithProductInvalidator reports the products unlinked by a category delete.
func WithProductInvalidator(p ProductInvalidator) CategoryServiceOption {
	return func(s *CategoryService) { s.products = p }
}

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo     repositories.CategoryRepository
	products ProductInvalidator
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository, opts ...CategoryServiceOption) *CategoryService {
	s := &CategoryService{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchCategories returns one page of categories and the number of matches.
func (s *CategoryService) SearchCategories(ctx context.Context, filter query.CategoryFilter, page query.Pagination) ([]models.Category, int64, error) {
	return s.repo.Search(ctx, filter, page)
}

// GetCategory retrieves a category by id.
func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateCategory creates a new category.
func (s *CategoryService) CreateCategory(ctx context.Context, category *models.Category) error {
	return s.repo.Create(ctx, category)
}

// UpdateCategory writes the name, slug and use_in_menu keys of fields.
func (s *CategoryService) UpdateCategory(ctx context.Context, id uint, fields map[string]any) error {
	return s.repo.Update(ctx, id, fields)
}

// DeleteCategory deletes a category and unlinks its products.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	unlinked, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if s.products != nil && len(unlinked) > 0 {
		s.products.ProductsChanged(ctx, unlinked)
	}
	return nil
}
