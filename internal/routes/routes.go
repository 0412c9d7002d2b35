package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/stockroom-labs/stockroom/internal/auth"
	"github.com/stockroom-labs/stockroom/internal/handlers"
	pkghttp "github.com/stockroom-labs/stockroom/pkg/http"
)

// Deps bundles everything route registration needs
type Deps struct {
	Products *handlers.ProductHandler
	Reviews  *handlers.ReviewHandler
	Users    *handlers.UserHandler
	Uploads  *handlers.UploadHandler

	Verifier *auth.Verifier
	Lookup   auth.UserLookup
	Recorder auth.FailureRecorder
	Observer auth.SuccessObserver
	IPConfig *pkghttp.IPConfig
}

// RegisterRoutes registers all application routes. Admission control runs
// router-wide (wired in main); authentication guards the protected group
// only.
func RegisterRoutes(router chi.Router, deps Deps) {
	// Public routes - no authentication required
	router.Post("/users/register", deps.Users.Register)
	router.Get("/products", deps.Products.ListProducts)
	router.Get("/products/{id}", deps.Products.GetProduct)
	router.Get("/products/{id}/reviews", deps.Reviews.ListReviews)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(deps.Verifier, deps.Lookup, deps.Recorder, deps.IPConfig, deps.Observer))

		r.Post("/auth/token", deps.Users.IssueToken)

		r.Post("/products", deps.Products.CreateProduct)
		r.Put("/products/{id}", deps.Products.UpdateProduct)
		r.Delete("/products/{id}", deps.Products.DeleteProduct)
		r.Post("/products/{id}/image", deps.Uploads.UploadImage)

		r.Post("/products/{id}/reviews", deps.Reviews.CreateReview)
	})
}
