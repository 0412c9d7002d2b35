package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stockroom-labs/stockroom/internal/models"
)

// ReviewRepository defines the interface for review persistence
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*models.Review, error)
}

// ReviewService implements product review logic
type ReviewService struct {
	repo     ReviewRepository
	products ProductRepository
	logger   *slog.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(repo ReviewRepository, products ProductRepository, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		products: products,
		logger:   logger,
	}
}

// CreateReview records a review by an authenticated user for an existing product
func (s *ReviewService) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	review.Comment = strings.TrimSpace(review.Comment)

	if review.Rating < 1 || review.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", models.ErrBadRequest)
	}
	if containsControlChars(review.Comment) {
		return nil, fmt.Errorf("%w: control characters are not allowed", models.ErrBadRequest)
	}

	// Reviews attach to existing products only
	if _, err := s.products.GetByID(ctx, review.ProductID); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, review)
	if err != nil {
		return nil, err
	}

	s.logger.Info("review created",
		slog.String("review_id", created.ID),
		slog.String("product_id", created.ProductID))

	return created, nil
}

// ListReviews returns a page of reviews for a product
func (s *ReviewService) ListReviews(ctx context.Context, productID string, limit, offset int) ([]*models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByProduct(ctx, productID, limit, offset)
}
