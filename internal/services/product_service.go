package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loja/internal/assembler"
	"loja/internal/query"
	"loja/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Routing keys of catalog events.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ProductCache keeps assembled products between requests.
type ProductCache interface {
	Get(ctx context.Context, id uint) (*assembler.ProductView, bool, error)
	Set(ctx context.Context, v assembler.ProductView) error
	Delete(ctx context.Context, id uint) error
}

// EventPublisher sends catalog events.
type EventPublisher interface {
	PublishJSON(routingKey string, payload any) error
}

// ProductEvent is the payload of catalog events.
type ProductEvent struct {
	ID         uint      `json:"id"`
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ProductServiceOption customizes a ProductService.
type ProductServiceOption func(*ProductService)

// WithCache enables the read-through product cache.
func WithCache(c ProductCache) ProductServiceOption {
	return func(s *ProductService) { s.cache = c }
}

// WithEvents publishes catalog events after each write.
func WithEvents(p EventPublisher) ProductServiceOption {
	return func(s *ProductService) { s.events = p }
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	cache  ProductCache
	events EventPublisher
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, opts ...ProductServiceOption) *ProductService {
	s := &ProductService{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchProducts returns one page of assembled products and the number of
// matches.
func (s *ProductService) SearchProducts(ctx context.Context, filter query.ProductFilter, page query.Pagination) ([]assembler.ProductView, int64, error) {
	products, total, err := s.repo.Search(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	return assembler.ToViews(products), total, nil
}

// GetProduct retrieves a single product, from the cache when possible.
func (s *ProductService) GetProduct(ctx context.Context, id uint) (assembler.ProductView, error) {
	if s.cache != nil {
		v, found, err := s.cache.Get(ctx, id)
		if err != nil {
			logrus.WithError(err).WithField("product_id", id).Warn("Product cache read failed")
		} else if found {
			return *v, nil
		}
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return assembler.ProductView{}, err
	}
	v := assembler.ToView(*product)

	if s.cache != nil {
		if err := s.cache.Set(ctx, v); err != nil {
			logrus.WithError(err).WithField("product_id", id).Warn("Product cache write failed")
		}
	}
	return v, nil
}

// CreateProduct validates in, stores the product with its children and
// returns the stored view.
func (s *ProductService) CreateProduct(ctx context.Context, in assembler.ProductInput) (assembler.ProductView, error) {
	product, categoryIDs, err := assembler.NewProduct(in)
	if err != nil {
		return assembler.ProductView{}, err
	}
	if err := s.repo.Create(ctx, product, categoryIDs); err != nil {
		return assembler.ProductView{}, err
	}

	stored, err := s.repo.GetByID(ctx, product.ID)
	if err != nil {
		return assembler.ProductView{}, err
	}
	s.publish(EventProductCreated, product.ID)
	return assembler.ToView(*stored), nil
}

// UpdateProduct replaces product id with in and returns the stored view.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, in assembler.ProductInput) (assembler.ProductView, error) {
	update, err := assembler.BuildUpdate(in)
	if err != nil {
		return assembler.ProductView{}, err
	}
	if err := s.repo.Update(ctx, id, update); err != nil {
		return assembler.ProductView{}, err
	}
	s.evict(ctx, id)

	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return assembler.ProductView{}, err
	}
	s.publish(EventProductUpdated, id)
	return assembler.ToView(*stored), nil
}

// DeleteProduct deletes product id with its children.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id)
	s.publish(EventProductDeleted, id)
	return nil
}

// ProductsChanged evicts the cached views of ids and announces them as
// updated, for changes made through other entities such as a category
// delete.
func (s *ProductService) ProductsChanged(ctx context.Context, ids []uint) {
	for _, id := range ids {
		s.evict(ctx, id)
		s.publish(EventProductUpdated, id)
	}
}

// HandleCatalogEvent evicts the product named by a received catalog event.
// Other instances use it to keep their caches coherent.
func (s *ProductService) HandleCatalogEvent(routingKey string, body []byte) error {
	var ev ProductEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("malformed %s event: %w", routingKey, err)
	}
	if ev.ID == 0 {
		return fmt.Errorf("%s event without product id", routingKey)
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(context.Background(), ev.ID)
}

func (s *ProductService) evict(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		logrus.WithError(err).WithField("product_id", id).Warn("Product cache eviction failed")
	}
}

// publish is best effort: the write is already committed.
func (s *ProductService) publish(event string, id uint) {
	if s.events == nil {
		return
	}
	payload := ProductEvent{ID: id, Event: event, OccurredAt: time.Now().UTC()}
	if err := s.events.PublishJSON(event, payload); err != nil {
		logrus.WithFields(logrus.Fields{"event": event, "product_id": id}).WithError(err).Error("Failed to publish catalog event")
	}
}
