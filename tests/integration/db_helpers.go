package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/stockroom-labs/stockroom/internal/auth"
	"github.com/stockroom-labs/stockroom/internal/database"
	"github.com/stockroom-labs/stockroom/internal/models"
	"github.com/stockroom-labs/stockroom/internal/repositories"
	pkgauth "github.com/stockroom-labs/stockroom/pkg/auth"
)

// TestDB manages a PostgreSQL testcontainer and database operations
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase creates a PostgreSQL testcontainer, runs migrations, returns TestDB
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("stockroom"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Migrations are embedded so the harness runs the exact schema the
	// server boots with
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         &database.DB{Pool: pool},
	}, nil
}

// Teardown stops the container and closes the connection pool
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"reviews",
		"products",
		"users",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// InitializeRepositories creates all repository instances from the database wrapper
func InitializeRepositories(db *database.DB) (
	*repositories.UserRepository,
	*repositories.ProductRepository,
	*repositories.ReviewRepository,
) {
	return repositories.NewUserRepository(db),
		repositories.NewProductRepository(db),
		repositories.NewReviewRepository(db)
}

// SeedUser inserts a test user with a freshly generated API key and returns
// both the user and the plaintext key
func SeedUser(ctx context.Context, db *database.DB, username, email, password string) (*models.User, string, error) {
	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	keyManager := auth.NewAPIKeyManager()
	plainKey, keyHash, err := keyManager.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate api key: %w", err)
	}

	keyPrefix, err := keyManager.DisplayPrefix(plainKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to derive key prefix: %w", err)
	}

	user, err := repositories.NewUserRepository(db).Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		APIKeyHash:   keyHash,
		APIKeyPrefix: keyPrefix,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to insert user: %w", err)
	}

	return user, plainKey, nil
}

// SeedProduct inserts a test product
func SeedProduct(ctx context.Context, db *database.DB, sku, name string, priceCents int64) (*models.Product, error) {
	product, err := repositories.NewProductRepository(db).Create(ctx, &models.Product{
		SKU:        sku,
		Name:       name,
		PriceCents: priceCents,
		Stock:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return product, nil
}
