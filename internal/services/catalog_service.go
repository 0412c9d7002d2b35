package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/stockroom-labs/stockroom/internal/models"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, id string, product *models.Product) (*models.Product, error)
	SetImagePath(ctx context.Context, id, imagePath string) error
	Delete(ctx context.Context, id string) error
}

// CatalogService implements product catalog business logic
type CatalogService struct {
	repo   ProductRepository
	logger *slog.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(repo ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger,
	}
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := s.sanitizeProduct(product); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		slog.String("product_id", created.ID),
		slog.String("sku", created.SKU))

	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, product *models.Product) (*models.Product, error) {
	if err := s.sanitizeProduct(product); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, product)
}

func (s *CatalogService) AttachImage(ctx context.Context, id, imagePath string) error {
	return s.repo.SetImagePath(ctx, id, imagePath)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("product deleted", slog.String("product_id", id))
	return nil
}

// sanitizeProduct trims free-text fields and rejects control characters
func (s *CatalogService) sanitizeProduct(product *models.Product) error {
	product.SKU = strings.TrimSpace(product.SKU)
	product.Name = strings.TrimSpace(product.Name)
	product.Description = strings.TrimSpace(product.Description)

	for _, field := range []string{product.SKU, product.Name, product.Description} {
		if containsControlChars(field) {
			return fmt.Errorf("%w: control characters are not allowed", models.ErrBadRequest)
		}
	}

	if product.Name == "" {
		return fmt.Errorf("%w: product name is required", models.ErrBadRequest)
	}
	if product.PriceCents < 0 {
		return fmt.Errorf("%w: price cannot be negative", models.ErrBadRequest)
	}
	if product.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", models.ErrBadRequest)
	}

	return nil
}

func containsControlChars(value string) bool {
	for _, r := range value {
		if unicode.IsControl(r) && r != '\n' {
			return true
		}
	}
	return false
}
