package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/stockroom-labs/stockroom/internal/auth"
	"github.com/stockroom-labs/stockroom/internal/models"
	"github.com/stockroom-labs/stockroom/internal/services"
	pkghttp "github.com/stockroom-labs/stockroom/pkg/http"
)

// UserService defines the interface for user business logic
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*services.RegistrationResult, error)
}

// TokenIssuer mints short-lived access tokens for a verified account
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// UserHandler handles registration and token exchange
type UserHandler struct {
	service UserService
	tokens  TokenIssuer
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService, tokens TokenIssuer) *UserHandler {
	return &UserHandler{
		service: service,
		tokens:  tokens,
	}
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse carries the created account and the one-time plaintext API key
type RegisterResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	APIKey       string `json:"api_key"` // Shown once; only a hash is stored
	APIKeyPrefix string `json:"api_key_prefix"`
}

// TokenResponse carries a freshly issued access token
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

// Register creates a new account and issues its API key
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	result, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Username or email already in use")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid registration data")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, &RegisterResponse{
		ID:           result.User.ID,
		Username:     result.User.Username,
		Email:        result.User.Email,
		APIKey:       result.PlainAPIKey,
		APIKeyPrefix: result.User.APIKeyPrefix,
	})
}

// IssueToken exchanges a verified identity for a short-lived token. The
// route sits behind the auth middleware, so reaching it requires a valid
// API key (or a still-valid token).
func (h *UserHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r)
	if identity == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	token, err := h.tokens.Issue(identity.UserID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, &TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: 3600,
	})
}
