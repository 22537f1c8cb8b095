package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loja/internal/apperr"
	"loja/internal/models"
	"loja/internal/query"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func withChildren(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("CategoryLinks", func(db *gorm.DB) *gorm.DB { return db.Order("category_id") })
}

func like(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

// Search returns one page of products matching filter and the total number
// of matches.
func (r *GORMProductRepository) Search(ctx context.Context, filter query.ProductFilter, page query.Pagination) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.Match != "" {
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like(filter.Match), like(filter.Match))
	}
	if pr := filter.PriceRange; pr != nil {
		q = q.Where("price BETWEEN ? AND ?", pr.Min, pr.Max)
	}
	if len(filter.CategoryIDs) > 0 {
		q = q.Where("id IN (?)", r.db.Model(&models.ProductCategory{}).
			Select("product_id").
			Where("category_id IN ?", filter.CategoryIDs))
	}
	for _, of := range filter.Options {
		anyValue := r.db.Where("LOWER(value_list) LIKE ?", like(of.Values[0]))
		for _, v := range of.Values[1:] {
			anyValue = anyValue.Or("LOWER(value_list) LIKE ?", like(v))
		}
		q = q.Where("id IN (?)", r.db.Model(&models.ProductOption{}).
			Select("product_id").
			Where("id = ?", of.ID).
			Where(anyValue))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	products := []models.Product{}
	if page.Limit == 0 || total == 0 {
		return products, total, nil
	}
	if err := withChildren(paginate(q, page)).Order("id").Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	return getProduct(r.db.WithContext(ctx), id)
}

func getProduct(db *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	if err := withChildren(db).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Create inserts the product, its images, options and category links in
// one transaction. On success product holds the generated ids.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product, categoryIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		for i := range product.Images {
			product.Images[i].ProductID = product.ID
		}
		if len(product.Images) > 0 {
			if err := tx.Create(&product.Images).Error; err != nil {
				return fmt.Errorf("failed to create product images: %w", err)
			}
		}

		for i := range product.Options {
			product.Options[i].ProductID = product.ID
		}
		if len(product.Options) > 0 {
			if err := tx.Create(&product.Options).Error; err != nil {
				return fmt.Errorf("failed to create product options: %w", err)
			}
		}

		links, err := linkCategories(tx, product.ID, categoryIDs)
		if err != nil {
			return err
		}
		product.CategoryLinks = links
		return nil
	})
}

// Update applies u to product id in one transaction. Images and options
// not referenced by u are removed.
func (r *GORMProductRepository) Update(ctx context.Context, id uint, u models.ProductUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := getProduct(tx, id)
		if err != nil {
			return err
		}

		if fields := pick(u.Fields, models.ProductUpdatableFields); len(fields) > 0 {
			if err := tx.Model(&models.Product{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return fmt.Errorf("failed to update product %d: %w", id, err)
			}
		}

		if err := syncImages(tx, current, u.Images); err != nil {
			return err
		}
		if err := syncOptions(tx, current, u.Options); err != nil {
			return err
		}

		if u.ReplaceCategories {
			if err := tx.Where("product_id = ?", id).Delete(&models.ProductCategory{}).Error; err != nil {
				return fmt.Errorf("failed to unlink categories of product %d: %w", id, err)
			}
			if _, err := linkCategories(tx, id, u.CategoryIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a product with its images, options and category links.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check product %d: %w", id, err)
		}
		if count == 0 {
			return fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
		}

		for _, child := range []any{&models.ProductImage{}, &models.ProductOption{}, &models.ProductCategory{}} {
			if err := tx.Where("product_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete children of product %d: %w", id, err)
			}
		}
		if err := tx.Delete(&models.Product{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete product %d: %w", id, err)
		}
		return nil
	})
}

// linkCategories links productID to every id in categoryIDs. Unknown
// categories are a validation error.
func linkCategories(tx *gorm.DB, productID uint, categoryIDs []uint) ([]models.ProductCategory, error) {
	links := []models.ProductCategory{}
	if len(categoryIDs) == 0 {
		return links, nil
	}

	var found int64
	if err := tx.Model(&models.Category{}).Where("id IN ?", categoryIDs).Count(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to check categories: %w", err)
	}
	if found != int64(len(categoryIDs)) {
		return nil, apperr.Validation("category_ids", `Todos os valores em "category_ids" devem ser categorias existentes.`)
	}

	for _, cid := range categoryIDs {
		links = append(links, models.ProductCategory{ProductID: productID, CategoryID: cid})
	}
	if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to link categories: %w", err)
	}
	return links, nil
}

func syncImages(tx *gorm.DB, current *models.Product, changes []models.ImageChange) error {
	owned := make(map[uint]bool, len(current.Images))
	for _, img := range current.Images {
		owned[img.ID] = true
	}

	keep := map[uint]bool{}
	for _, ch := range changes {
		switch {
		case ch.ID != 0 && !owned[ch.ID]:
			return apperr.Validation("images", fmt.Sprintf("Imagem %d não pertence ao produto", ch.ID))
		case ch.Deleted:
			// dropped below with every unreferenced row
		case ch.ID != 0:
			keep[ch.ID] = true
			if err := tx.Model(&models.ProductImage{}).Where("id = ?", ch.ID).Update("path", ch.Path).Error; err != nil {
				return fmt.Errorf("failed to update image %d: %w", ch.ID, err)
			}
		default:
			img := models.ProductImage{ProductID: current.ID, Enabled: true, Path: ch.Path}
			if err := tx.Create(&img).Error; err != nil {
				return fmt.Errorf("failed to create image: %w", err)
			}
			keep[img.ID] = true
		}
	}

	for _, img := range current.Images {
		if keep[img.ID] {
			continue
		}
		if err := tx.Delete(&models.ProductImage{}, img.ID).Error; err != nil {
			return fmt.Errorf("failed to delete image %d: %w", img.ID, err)
		}
	}
	return nil
}

func syncOptions(tx *gorm.DB, current *models.Product, changes []models.OptionChange) error {
	owned := make(map[uint]bool, len(current.Options))
	for _, opt := range current.Options {
		owned[opt.ID] = true
	}

	keep := map[uint]bool{}
	for _, ch := range changes {
		switch {
		case ch.ID != 0 && !owned[ch.ID]:
			return apperr.Validation("options", fmt.Sprintf("Opção %d não pertence ao produto", ch.ID))
		case ch.Deleted:
		case ch.ID != 0:
			keep[ch.ID] = true
			fields := map[string]any{"value_list": ch.Values}
			if ch.Radius != nil {
				fields["radius"] = *ch.Radius
			}
			if ch.Title != "" {
				fields["title"] = ch.Title
			}
			if ch.Shape != "" {
				fields["shape"] = ch.Shape
			}
			if ch.Type != "" {
				fields["type"] = ch.Type
			}
			if err := tx.Model(&models.ProductOption{}).Where("id = ?", ch.ID).Updates(fields).Error; err != nil {
				return fmt.Errorf("failed to update option %d: %w", ch.ID, err)
			}
		default:
			opt := models.ProductOption{
				ProductID: current.ID,
				Title:     ch.Title,
				Shape:     ch.Shape,
				Type:      ch.Type,
				Values:    ch.Values,
			}
			if ch.Radius != nil {
				opt.Radius = *ch.Radius
			}
			if err := tx.Create(&opt).Error; err != nil {
				return fmt.Errorf("failed to create option: %w", err)
			}
			keep[opt.ID] = true
		}
	}

	for _, opt := range current.Options {
		if keep[opt.ID] {
			continue
		}
		if err := tx.Delete(&models.ProductOption{}, opt.ID).Error; err != nil {
			return fmt.Errorf("failed to delete option %d: %w", opt.ID, err)
		}
	}
	return nil
}
