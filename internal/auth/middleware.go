package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/stockroom-labs/stockroom/internal/models"
	pkghttp "github.com/stockroom-labs/stockroom/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// IdentityContextKey is the key for storing the authenticated identity in context
	IdentityContextKey contextKey = "identity"

	// TokenHeader is the alternate header carrying a bare credential
	TokenHeader = "X-Api-Token"
)

// FailureRecorder receives one notification per failed verification so
// repeated failures feed back into lockout tracking for the client.
type FailureRecorder interface {
	RecordFailure(clientID string, now time.Time)
}

// SuccessObserver counts verified credentials for telemetry
type SuccessObserver interface {
	ObserveAuthSuccess()
}

// Middleware verifies the request credential and injects the identity into
// the request context. A failed verification is recorded against the client
// IP exactly once and answered with 401; the response never distinguishes
// why verification failed.
func Middleware(verifier *Verifier, lookup UserLookup, recorder FailureRecorder, ipConfig *pkghttp.IPConfig, observer SuccessObserver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := ExtractCredential(r)

			identity, ok := verifier.Authenticate(r.Context(), credential, lookup)
			if !ok {
				clientIP := pkghttp.ExtractClientIP(r, ipConfig)
				recorder.RecordFailure(clientIP, time.Now())
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			if observer != nil {
				observer.ObserveAuthSuccess()
			}

			ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractCredential pulls the credential from the Authorization header
// (expected shape "Bearer <credential>") or, failing that, the X-Api-Token
// header. Returns "" when neither is present or the shape is wrong.
func ExtractCredential(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return r.Header.Get(TokenHeader)
}

// IdentityFromContext extracts the authenticated identity from the request context
func IdentityFromContext(r *http.Request) *models.Identity {
	identity, ok := r.Context().Value(IdentityContextKey).(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}
