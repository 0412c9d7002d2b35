package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stockroom-labs/stockroom/internal/auth"
	"github.com/stockroom-labs/stockroom/internal/models"
	pkghttp "github.com/stockroom-labs/stockroom/pkg/http"
)

// ReviewService defines the interface for review business logic
type ReviewService interface {
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	ListReviews(ctx context.Context, productID string, limit, offset int) ([]*models.Review, error)
}

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	service ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(service ReviewService) *ReviewHandler {
	return &ReviewHandler{
		service: service,
	}
}

// CreateReviewRequest represents the request body for creating a review
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// ReviewResponse represents a review in the HTTP response
type ReviewResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

func reviewModelToResponse(review *models.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:        review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateReview records a review for a product by the authenticated caller
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	if productID == "" {
		pkghttp.WriteBadRequest(w, "Product ID is required")
		return
	}

	identity := auth.IdentityFromContext(r)
	if identity == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    identity.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	created, err := h.service.CreateReview(r.Context(), review)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Product not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid review data")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, reviewModelToResponse(created))
}

// ListReviews returns a page of reviews for a product
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	if productID == "" {
		pkghttp.WriteBadRequest(w, "Product ID is required")
		return
	}

	reviews, err := h.service.ListReviews(r.Context(), productID, queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]*ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		resp = append(resp, reviewModelToResponse(review))
	}

	writeJSON(w, http.StatusOK, resp)
}
