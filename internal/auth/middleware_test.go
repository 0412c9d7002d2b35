package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stockroom-labs/stockroom/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRecorder captures lockout feedback from the middleware
type mockRecorder struct {
	calls []string
}

func (m *mockRecorder) RecordFailure(clientID string, now time.Time) {
	m.calls = append(m.calls, clientID)
}

func okHandler(sawIdentity *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity := auth.IdentityFromContext(r); identity != nil {
			*sawIdentity = identity.UserID
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_ValidTokenReachesHandler(t *testing.T) {
	verifier, _, tokens := newVerifier()
	recorder := &mockRecorder{}

	token, err := tokens.Issue("42")
	require.NoError(t, err)

	var sawIdentity string
	handler := auth.Middleware(verifier, mapLookup(nil), recorder, nil, nil)(okHandler(&sawIdentity))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "42", sawIdentity)
	assert.Empty(t, recorder.calls)
}

func TestMiddleware_MissingCredentialRecordsOneFailure(t *testing.T) {
	verifier, _, _ := newVerifier()
	recorder := &mockRecorder{}

	var sawIdentity string
	handler := auth.Middleware(verifier, mapLookup(nil), recorder, nil, nil)(okHandler(&sawIdentity))

	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	req.RemoteAddr = "9.9.9.9:51234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, sawIdentity)
	assert.Equal(t, []string{"9.9.9.9"}, recorder.calls)
}

func TestMiddleware_InvalidTokenIs401(t *testing.T) {
	verifier, _, _ := newVerifier()
	recorder := &mockRecorder{}

	handler := auth.Middleware(verifier, mapLookup(nil), recorder, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for a rejected credential")
	}))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	req.RemoteAddr = "1.2.3.4:1000"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Len(t, recorder.calls, 1)
}

func TestMiddleware_AlternateHeader(t *testing.T) {
	verifier, _, tokens := newVerifier()
	recorder := &mockRecorder{}

	token, err := tokens.Issue("7")
	require.NoError(t, err)

	var sawIdentity string
	handler := auth.Middleware(verifier, mapLookup(nil), recorder, nil, nil)(okHandler(&sawIdentity))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set(auth.TokenHeader, token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "7", sawIdentity)
}

func TestExtractCredential(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		tokenValue string
		want       string
	}{
		{name: "bearer", authHeader: "Bearer abc", want: "abc"},
		{name: "wrong scheme", authHeader: "Basic abc", want: ""},
		{name: "no space", authHeader: "Bearerabc", want: ""},
		{name: "alternate header", tokenValue: "xyz", want: "xyz"},
		{name: "authorization wins", authHeader: "Bearer abc", tokenValue: "xyz", want: "abc"},
		{name: "nothing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.tokenValue != "" {
				req.Header.Set(auth.TokenHeader, tt.tokenValue)
			}
			assert.Equal(t, tt.want, auth.ExtractCredential(req))
		})
	}
}
