package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stockroom-labs/stockroom/internal/auth"
	"github.com/stockroom-labs/stockroom/internal/models"
	pkgauth "github.com/stockroom-labs/stockroom/pkg/auth"
	pkglogger "github.com/stockroom-labs/stockroom/pkg/logger"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*models.User, error)
}

// RegistrationResult carries the created user plus the plaintext API key,
// which is shown exactly once and never stored.
type RegistrationResult struct {
	User        *models.User
	PlainAPIKey string
}

// UserService implements registration and account lookup
type UserService struct {
	repo   UserRepository
	keys   *auth.APIKeyManager
	mailer EmailService // nil when email is disabled
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, keys *auth.APIKeyManager, mailer EmailService, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		keys:   keys,
		mailer: mailer,
		logger: logger,
	}
}

// Register creates a user with a hashed password and a freshly issued API
// key. Registration is not part of the per-request admission path.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*RegistrationResult, error) {
	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrBadRequest, err.Error())
	}

	passwordHash, err := pkgauth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	plainKey, keyHash, err := s.keys.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}

	keyPrefix, err := s.keys.DisplayPrefix(plainKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key prefix: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		APIKeyHash:   keyHash,
		APIKeyPrefix: keyPrefix,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("user_id", created.ID),
		slog.String("email", pkglogger.SanitizedEmail(created.Email)))

	if s.mailer != nil {
		// Fire-and-forget: registration must not fail on mail delivery
		go func() {
			mailCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := s.mailer.SendWelcomeEmail(mailCtx, created.Email, created.Username, keyPrefix); err != nil {
				s.logger.Error("failed to send welcome email", slog.Any("error", err))
			}
		}()
	}

	return &RegistrationResult{
		User:        created,
		PlainAPIKey: plainKey,
	}, nil
}

// GetByID fetches a user by identifier
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// LookupByAPIKeyHash is the directory lookup handed to the credential
// verifier. It resolves a stored key hash to the owning user record.
func (s *UserService) LookupByAPIKeyHash(ctx context.Context, apiKeyHash string) (*models.User, error) {
	return s.repo.GetByAPIKeyHash(ctx, apiKeyHash)
}
