package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/stockroom-labs/stockroom/internal/admission"
	"github.com/stockroom-labs/stockroom/internal/auth"
	"github.com/stockroom-labs/stockroom/internal/config"
	"github.com/stockroom-labs/stockroom/internal/database"
	"github.com/stockroom-labs/stockroom/internal/handlers"
	middlewareCustom "github.com/stockroom-labs/stockroom/internal/middleware"
	"github.com/stockroom-labs/stockroom/internal/routes"
	"github.com/stockroom-labs/stockroom/internal/services"
	"github.com/stockroom-labs/stockroom/internal/storage"
	"github.com/stockroom-labs/stockroom/internal/telemetry"
	pkghttp "github.com/stockroom-labs/stockroom/pkg/http"
)

// SentEmail represents a captured email message
type SentEmail struct {
	To        string
	Username  string
	KeyPrefix string
}

// MockEmailService captures sent emails for test assertions
type MockEmailService struct {
	SentEmails []SentEmail
	mu         sync.Mutex
}

// SendWelcomeEmail records the email
func (m *MockEmailService) SendWelcomeEmail(ctx context.Context, email, username, keyPrefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentEmails = append(m.SentEmails, SentEmail{
		To:        email,
		Username:  username,
		KeyPrefix: keyPrefix,
	})
	return nil
}

// GetLastEmail returns the most recent email sent
func (m *MockEmailService) GetLastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *MockEmailService
	Config       *config.Config

	// Dependency references for inspection in tests
	Controller *admission.Controller
	logger     *slog.Logger
}

// NewTestServer initializes a complete HTTP server with a real database and
// mocked email. The admission limits are deliberately loose so functional
// tests do not trip the limiter; tests targeting admission behavior override
// cfg.Admission before calling this.
func NewTestServer(db *database.DB, cfg *config.Config) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if cfg == nil {
		cfg = DefaultTestConfig()
	}

	metrics := telemetry.New()

	controller := admission.New(admission.Config{
		MaxRequests:      cfg.Admission.MaxRequests,
		Window:           cfg.Admission.Window,
		LockoutThreshold: cfg.Admission.LockoutThreshold,
		LockoutDuration:  cfg.Admission.LockoutDuration,
		IdleTTL:          cfg.Admission.IdleTTL,
	}, logger, metrics)

	tokenManager := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenExpiry)
	keyManager := auth.NewAPIKeyManager()
	verifier := auth.NewVerifier(tokenManager, keyManager)

	userRepo, productRepo, reviewRepo := InitializeRepositories(db)

	mockEmail := &MockEmailService{}

	imageStore, err := storage.NewLocalImageStore(cfg.Uploads.Dir)
	if err != nil {
		panic("failed to create image store: " + err.Error())
	}

	userService := services.NewUserService(userRepo, keyManager, mockEmail, logger)
	catalogService := services.NewCatalogService(productRepo, logger)
	reviewService := services.NewReviewService(reviewRepo, productRepo, logger)

	userHandler := handlers.NewUserHandler(userService, tokenManager)
	productHandler := handlers.NewProductHandler(catalogService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	uploadHandler := handlers.NewUploadHandler(imageStore, catalogService, cfg.Uploads.MaxSizeBytes)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middlewareCustom.Admission(controller, ipConfig))

	routes.RegisterRoutes(r, routes.Deps{
		Products: productHandler,
		Reviews:  reviewHandler,
		Users:    userHandler,
		Uploads:  uploadHandler,
		Verifier: verifier,
		Lookup:   userService.LookupByAPIKeyHash,
		Recorder: controller,
		Observer: metrics,
		IPConfig: ipConfig,
	})

	server := httptest.NewServer(r)

	return &TestServer{
		Server:       server,
		DB:           db,
		EmailService: mockEmail,
		Config:       cfg,
		Controller:   controller,
		logger:       logger,
	}
}

// DefaultTestConfig returns a config suitable for functional tests
func DefaultTestConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			TokenSecret: "test-secret-32-characters-long-for-testing",
			TokenExpiry: 1 * time.Hour,
		},
		Admission: config.AdmissionConfig{
			MaxRequests:      10000,
			Window:           60 * time.Second,
			LockoutThreshold: 5,
			LockoutDuration:  15 * time.Minute,
			IdleTTL:          10 * time.Minute,
			SweepInterval:    5 * time.Minute,
		},
		Server: config.ServerConfig{
			Port:           "0",
			Env:            "test",
			TrustedProxies: []string{},
		},
		Uploads: config.UploadsConfig{
			Dir:          os.TempDir(),
			MaxSizeBytes: 5 << 20,
		},
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with a credential
// (API key or signed token, both ride the same header)
func (ts *TestServer) RequestWithAuth(method, path, credential string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + credential,
	}
	return ts.Request(method, path, body, headers)
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// GetErrorMessage extracts the error message from an error response
func GetErrorMessage(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	if msg, ok := errResp["message"].(string); ok {
		return msg, nil
	}
	return "", nil
}
