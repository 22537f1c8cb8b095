package services_test

import (
	"context"
	"errors"
	"testing"

	"loja/internal/apperr"
	"loja/internal/assembler"
	"loja/internal/models"
	"loja/internal/query"
	"loja/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func TestProductService_SearchProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	filter := query.ProductFilter{Match: "tenis"}
	page := query.Pagination{Limit: 12, Page: 1}
	rows := []models.Product{
		{ID: 1, Name: "Tenis A", Price: 10, Options: []models.ProductOption{{ID: 3, Title: "Cor", Values: "Azul, Preto"}}},
		{ID: 2, Name: "Tenis B", Price: 20},
	}
	mockRepo.On("Search", ctx, filter, page).Return(rows, int64(5), nil).Once()

	views, total, err := service.SearchProducts(ctx, filter, page)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, views, 2)
	assert.Equal(t, []string{"Azul", "Preto"}, views[0].Options[0].Values)
	assert.NotNil(t, views[1].CategoryIDs)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("GetByID", ctx, uint(1)).Return(&models.Product{ID: 1, Name: "Product A"}, nil).Once()
	v, err := service.GetProduct(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Product A", v.Name)

	// Test product not found
	mockRepo.On("GetByID", ctx, uint(99)).Return(nil, apperr.ErrNotFound).Once()
	_, err = service.GetProduct(ctx, 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductUsesCache(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCache := new(MockProductCache)
	service := services.NewProductService(mockRepo, services.WithCache(mockCache))

	// miss: load from the store and fill the cache
	mockCache.On("Get", ctx, uint(1)).Return(nil, false, nil).Once()
	mockRepo.On("GetByID", ctx, uint(1)).Return(&models.Product{ID: 1, Name: "Product A"}, nil).Once()
	mockCache.On("Set", ctx, mock.MatchedBy(func(v assembler.ProductView) bool { return v.ID == 1 })).Return(nil).Once()

	v, err := service.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Product A", v.Name)

	// hit: the store is not touched
	cached := assembler.ToView(models.Product{ID: 1, Name: "Cached"})
	mockCache.On("Get", ctx, uint(1)).Return(&cached, true, nil).Once()
	v, err = service.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Cached", v.Name)

	// a broken cache falls back to the store
	mockCache.On("Get", ctx, uint(2)).Return(nil, false, errors.New("redis down")).Once()
	mockRepo.On("GetByID", ctx, uint(2)).Return(&models.Product{ID: 2, Name: "Product B"}, nil).Once()
	mockCache.On("Set", ctx, mock.Anything).Return(errors.New("redis down")).Once()
	v, err = service.GetProduct(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Product B", v.Name)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockEvents := new(MockPublisher)
	service := services.NewProductService(mockRepo, services.WithEvents(mockEvents))

	in := assembler.ProductInput{
		Name:        "Caneca",
		Slug:        "caneca",
		Price:       price(25),
		CategoryIDs: []uint{2},
		Options:     []assembler.OptionInput{{Title: "Cor", Values: assembler.OptionValues{"A", "B"}}},
	}

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product"), []uint{2}).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(*models.Product)
			assert.Equal(t, 25.0, p.PriceWithDiscount)
			assert.Equal(t, "A,B", p.Options[0].Values)
			p.ID = 10
		}).
		Return(nil).Once()
	mockRepo.On("GetByID", ctx, uint(10)).Return(&models.Product{
		ID: 10, Name: "Caneca", Slug: "caneca", Price: 25, PriceWithDiscount: 25,
		Options:       []models.ProductOption{{ID: 4, Title: "Cor", Values: "A,B"}},
		CategoryLinks: []models.ProductCategory{{ProductID: 10, CategoryID: 2}},
	}, nil).Once()
	mockEvents.On("PublishJSON", services.EventProductCreated, mock.MatchedBy(func(ev services.ProductEvent) bool {
		return ev.ID == 10 && ev.Event == services.EventProductCreated
	})).Return(nil).Once()

	v, err := service.CreateProduct(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, uint(10), v.ID)
	assert.Equal(t, []uint{2}, v.CategoryIDs)
	assert.Equal(t, []string{"A", "B"}, v.Options[0].Values)
	mockRepo.AssertExpectations(t)
	mockEvents.AssertExpectations(t)
}

func TestProductService_CreateProductRejectsBadInput(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	_, err := service.CreateProduct(context.Background(), assembler.ProductInput{
		Name: "X", Slug: "x", Price: price(1),
		Options: []assembler.OptionInput{{Title: "Medida", Values: assembler.OptionValues{"1,5"}}},
	})
	assert.True(t, apperr.IsValidation(err))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCache := new(MockProductCache)
	mockEvents := new(MockPublisher)
	service := services.NewProductService(mockRepo, services.WithCache(mockCache), services.WithEvents(mockEvents))

	in := assembler.ProductInput{Name: "Novo", Slug: "novo", Price: price(9)}

	mockRepo.On("Update", ctx, uint(3), mock.MatchedBy(func(u models.ProductUpdate) bool {
		return u.Fields["name"] == "Novo" && u.Fields["price"] == 9.0 && !u.ReplaceCategories
	})).Return(nil).Once()
	mockCache.On("Delete", ctx, uint(3)).Return(nil).Once()
	mockRepo.On("GetByID", ctx, uint(3)).Return(&models.Product{ID: 3, Name: "Novo", Price: 9}, nil).Once()
	mockEvents.On("PublishJSON", services.EventProductUpdated, mock.Anything).Return(errors.New("broker down")).Once()

	v, err := service.UpdateProduct(ctx, 3, in)
	require.NoError(t, err)
	assert.Equal(t, "Novo", v.Name)

	// Test product not found
	mockRepo.On("Update", ctx, uint(99), mock.Anything).Return(apperr.ErrNotFound).Once()
	_, err = service.UpdateProduct(ctx, 99, in)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockEvents.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCache := new(MockProductCache)
	service := services.NewProductService(mockRepo, services.WithCache(mockCache))

	mockRepo.On("Delete", ctx, uint(1)).Return(nil).Once()
	mockCache.On("Delete", ctx, uint(1)).Return(nil).Once()
	assert.NoError(t, service.DeleteProduct(ctx, 1))

	// Test product not found
	mockRepo.On("Delete", ctx, uint(99)).Return(apperr.ErrNotFound).Once()
	assert.ErrorIs(t, service.DeleteProduct(ctx, 99), apperr.ErrNotFound)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestProductService_ProductsChanged(t *testing.T) {
	ctx := context.Background()
	mockCache := new(MockProductCache)
	mockEvents := new(MockPublisher)
	service := services.NewProductService(new(MockProductRepository), services.WithCache(mockCache), services.WithEvents(mockEvents))

	for _, id := range []uint{4, 7} {
		mockCache.On("Delete", ctx, id).Return(nil).Once()
		id := id
		mockEvents.On("PublishJSON", services.EventProductUpdated, mock.MatchedBy(func(ev services.ProductEvent) bool {
			return ev.ID == id
		})).Return(nil).Once()
	}
	service.ProductsChanged(ctx, []uint{4, 7})

	mockCache.AssertExpectations(t)
	mockEvents.AssertExpectations(t)
}

func TestProductService_HandleCatalogEvent(t *testing.T) {
	mockCache := new(MockProductCache)
	service := services.NewProductService(new(MockProductRepository), services.WithCache(mockCache))

	mockCache.On("Delete", mock.Anything, uint(5)).Return(nil).Once()
	assert.NoError(t, service.HandleCatalogEvent(services.EventProductUpdated, []byte(`{"id":5,"event":"product.updated"}`)))

	assert.Error(t, service.HandleCatalogEvent(services.EventProductUpdated, []byte(`not json`)))
	assert.Error(t, service.HandleCatalogEvent(services.EventProductUpdated, []byte(`{}`)))
	mockCache.AssertExpectations(t)

	withoutCache := services.NewProductService(new(MockProductRepository))
	assert.NoError(t, withoutCache.HandleCatalogEvent(services.EventProductDeleted, []byte(`{"id":5}`)))
}
