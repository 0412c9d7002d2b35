package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stockroom-labs/stockroom/internal/models"
	"github.com/stockroom-labs/stockroom/internal/storage"
	pkghttp "github.com/stockroom-labs/stockroom/pkg/http"
)

// ImageAttacher records a stored image path on a product
type ImageAttacher interface {
	AttachImage(ctx context.Context, id, imagePath string) error
}

// UploadHandler handles product image uploads
type UploadHandler struct {
	store    storage.ImageStore
	catalog  ImageAttacher
	maxBytes int64
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(store storage.ImageStore, catalog ImageAttacher, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		store:    store,
		catalog:  catalog,
		maxBytes: maxBytes,
	}
}

// UploadResponse reports where the image was stored
type UploadResponse struct {
	ProductID string `json:"product_id"`
	ImagePath string `json:"image_path"`
}

// UploadImage accepts a multipart image for a product
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	if productID == "" {
		pkghttp.WriteBadRequest(w, "Product ID is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		pkghttp.WriteBadRequest(w, "Expected multipart field 'image'")
		return
	}
	defer file.Close()

	path, err := h.store.Save(r.Context(), productID, header.Filename, file)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Unsupported or unreadable image")
		return
	}

	if err := h.catalog.AttachImage(r.Context(), productID, path); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Product not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, &UploadResponse{
		ProductID: productID,
		ImagePath: path,
	})
}
