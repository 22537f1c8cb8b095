package repositories

import (
	"context"
	"errors"
	"fmt"

	"loja/internal/apperr"
	"loja/internal/models"
	"loja/internal/query"

	"gorm.io/gorm"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// Search returns one page of categories and the total number of matches.
func (r *GORMCategoryRepository) Search(ctx context.Context, filter query.CategoryFilter, page query.Pagination) ([]models.Category, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Category{})
	if filter.UseInMenu != nil {
		q = q.Where("use_in_menu = ?", *filter.UseInMenu)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	categories := []models.Category{}
	if page.Limit == 0 || total == 0 {
		return categories, total, nil
	}
	if err := paginate(q, page).Order("id").Find(&categories).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search categories: %w", err)
	}
	return categories, total, nil
}

// GetByID retrieves a category by its ID.
func (r *GORMCategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category by ID %d: %w", id, err)
	}
	return &category, nil
}

// Create creates a new category.
func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Update writes the whitelisted columns present in fields. A missing row is
// not an error.
func (r *GORMCategoryRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	fields = pick(fields, models.CategoryUpdatableFields)
	if len(fields) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update category %d: %w", id, err)
	}
	return nil
}

// Delete removes a category and its product links and returns the ids of
// the unlinked products. Deleting a missing row succeeds.
func (r *GORMCategoryRepository) Delete(ctx context.Context, id uint) ([]uint, error) {
	var productIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProductCategory{}).Where("category_id = ?", id).Order("product_id").Pluck("product_id", &productIDs).Error; err != nil {
			return fmt.Errorf("failed to list products of category %d: %w", id, err)
		}
		if err := tx.Where("category_id = ?", id).Delete(&models.ProductCategory{}).Error; err != nil {
			return fmt.Errorf("failed to unlink category %d: %w", id, err)
		}
		if err := tx.Delete(&models.Category{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete category %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return productIDs, nil
}

// paginate applies the window of page; NoLimit reads every row.
func paginate(q *gorm.DB, page query.Pagination) *gorm.DB {
	if page.All() {
		return q
	}
	return q.Limit(page.Limit).Offset(page.Offset)
}
