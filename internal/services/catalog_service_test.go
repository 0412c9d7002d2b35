package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stockroom-labs/stockroom/internal/models"
	"github.com/stockroom-labs/stockroom/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProductRepository implements services.ProductRepository for testing
type MockProductRepository struct {
	products map[string]*models.Product
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{products: make(map[string]*models.Product)}
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return product, nil
}

func (m *MockProductRepository) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	result := make([]*models.Product, 0, len(m.products))
	for _, product := range m.products {
		result = append(result, product)
	}
	return result, nil
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	created := *product
	created.ID = uuid.New().String()
	m.products[created.ID] = &created
	return &created, nil
}

func (m *MockProductRepository) Update(ctx context.Context, id string, product *models.Product) (*models.Product, error) {
	if _, ok := m.products[id]; !ok {
		return nil, models.ErrNotFound
	}
	updated := *product
	updated.ID = id
	m.products[id] = &updated
	return &updated, nil
}

func (m *MockProductRepository) SetImagePath(ctx context.Context, id, imagePath string) error {
	product, ok := m.products[id]
	if !ok {
		return models.ErrNotFound
	}
	product.ImagePath = &imagePath
	return nil
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func TestCreateProduct_TrimsFields(t *testing.T) {
	service := services.NewCatalogService(NewMockProductRepository(), testLogger())

	created, err := service.CreateProduct(context.Background(), &models.Product{
		SKU:        "  WDGT-1  ",
		Name:       "  Widget  ",
		PriceCents: 1999,
	})
	require.NoError(t, err)

	assert.Equal(t, "WDGT-1", created.SKU)
	assert.Equal(t, "Widget", created.Name)
}

func TestCreateProduct_RejectsControlChars(t *testing.T) {
	service := services.NewCatalogService(NewMockProductRepository(), testLogger())

	_, err := service.CreateProduct(context.Background(), &models.Product{
		SKU:        "WDGT-1",
		Name:       "Widget\x00",
		PriceCents: 1999,
	})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestCreateProduct_RejectsEmptyNameAndNegatives(t *testing.T) {
	service := services.NewCatalogService(NewMockProductRepository(), testLogger())

	_, err := service.CreateProduct(context.Background(), &models.Product{SKU: "A", Name: "   "})
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = service.CreateProduct(context.Background(), &models.Product{SKU: "A", Name: "Widget", PriceCents: -1})
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = service.CreateProduct(context.Background(), &models.Product{SKU: "A", Name: "Widget", Stock: -1})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestListProducts_ClampsPagination(t *testing.T) {
	repo := NewMockProductRepository()
	service := services.NewCatalogService(repo, testLogger())

	_, err := service.ListProducts(context.Background(), -5, -10)
	assert.NoError(t, err)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	service := services.NewCatalogService(NewMockProductRepository(), testLogger())

	err := service.DeleteProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateReview_ValidatesRatingAndProduct(t *testing.T) {
	products := NewMockProductRepository()
	created, err := products.Create(context.Background(), &models.Product{SKU: "A", Name: "Widget"})
	require.NoError(t, err)

	reviews := &MockReviewRepository{}
	service := services.NewReviewService(reviews, products, testLogger())

	_, err = service.CreateReview(context.Background(), &models.Review{ProductID: created.ID, UserID: "u1", Rating: 0})
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = service.CreateReview(context.Background(), &models.Review{ProductID: "missing", UserID: "u1", Rating: 4})
	assert.ErrorIs(t, err, models.ErrNotFound)

	review, err := service.CreateReview(context.Background(), &models.Review{ProductID: created.ID, UserID: "u1", Rating: 4, Comment: " solid "})
	require.NoError(t, err)
	assert.Equal(t, "solid", review.Comment)
}

// MockReviewRepository implements services.ReviewRepository for testing
type MockReviewRepository struct {
	reviews []*models.Review
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	created := *review
	created.ID = uuid.New().String()
	m.reviews = append(m.reviews, &created)
	return &created, nil
}

func (m *MockReviewRepository) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*models.Review, error) {
	result := make([]*models.Review, 0)
	for _, review := range m.reviews {
		if review.ProductID == productID {
			result = append(result, review)
		}
	}
	return result, nil
}
