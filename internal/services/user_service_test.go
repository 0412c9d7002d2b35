package services_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stockroom-labs/stockroom/internal/auth"
	"github.com/stockroom-labs/stockroom/internal/models"
	"github.com/stockroom-labs/stockroom/internal/services"
	pkgauth "github.com/stockroom-labs/stockroom/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockUserRepository implements services.UserRepository for testing
type MockUserRepository struct {
	users  map[string]*models.User // keyed by API key hash
	nextID int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*models.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	m.nextID++
	created := *user
	created.ID = strings.Repeat("0", 7) + string(rune('0'+m.nextID))
	m.users[user.APIKeyHash] = &created
	return &created, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*models.User, error) {
	user, ok := m.users[apiKeyHash]
	if !ok {
		return nil, models.ErrNotFound
	}
	return user, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRegister_IssuesAPIKeyAndHashesPassword(t *testing.T) {
	repo := NewMockUserRepository()
	service := services.NewUserService(repo, auth.NewAPIKeyManager(), nil, testLogger())

	result, err := service.Register(context.Background(), "casey", "casey@example.com", "hunter4242")
	require.NoError(t, err)

	// Plaintext key is returned exactly once and never stored
	assert.True(t, strings.HasPrefix(result.PlainAPIKey, auth.KeyPrefix))
	assert.NotEqual(t, result.PlainAPIKey, result.User.APIKeyHash)

	// Stored password is a salted hash of the input
	assert.NotEqual(t, "hunter4242", result.User.PasswordHash)
	assert.NoError(t, pkgauth.ComparePassword(result.User.PasswordHash, "hunter4242"))
}

func TestRegister_IssuedKeyResolvesViaLookup(t *testing.T) {
	repo := NewMockUserRepository()
	keys := auth.NewAPIKeyManager()
	service := services.NewUserService(repo, keys, nil, testLogger())

	result, err := service.Register(context.Background(), "casey", "casey@example.com", "hunter4242")
	require.NoError(t, err)

	hash, err := keys.ValidateAndHash(result.PlainAPIKey)
	require.NoError(t, err)

	user, err := service.LookupByAPIKeyHash(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, user.ID)
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	repo := NewMockUserRepository()
	service := services.NewUserService(repo, auth.NewAPIKeyManager(), nil, testLogger())

	_, err := service.Register(context.Background(), "casey", "casey@example.com", "short")
	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.Empty(t, repo.users)
}
