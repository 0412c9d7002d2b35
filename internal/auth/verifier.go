package auth

import (
	"context"

	"github.com/stockroom-labs/stockroom/internal/models"
)

// UserLookup resolves a stored API key hash to a user record. It is supplied
// by the caller and may block on a backing store; the verifier holds no lock
// around it.
type UserLookup func(ctx context.Context, apiKeyHash string) (*models.User, error)

// Verifier resolves a presented credential to an authenticated identity.
// Two credential schemes co-exist on one header: a long-lived API key,
// recognized by its prefix, and a short-lived signed token. The cheap shape
// check runs before the token-decode path.
type Verifier struct {
	tokens *TokenManager
	keys   *APIKeyManager
}

// NewVerifier creates a new Verifier
func NewVerifier(tokens *TokenManager, keys *APIKeyManager) *Verifier {
	return &Verifier{
		tokens: tokens,
		keys:   keys,
	}
}

// Authenticate returns the identity behind a credential, or absence.
//
// Malformed credentials, signature mismatches, expired tokens, and unknown
// API keys all collapse into the same absence result so callers cannot
// observe which failure mode occurred.
func (v *Verifier) Authenticate(ctx context.Context, credential string, lookup UserLookup) (*models.Identity, bool) {
	if credential == "" {
		return nil, false
	}

	if v.keys.HasKeyShape(credential) {
		hash, err := v.keys.ValidateAndHash(credential)
		if err != nil {
			return nil, false
		}

		user, err := lookup(ctx, hash)
		if err != nil || user == nil {
			return nil, false
		}

		return &models.Identity{UserID: user.ID}, true
	}

	claims, err := v.tokens.Validate(credential)
	if err != nil {
		return nil, false
	}

	return &models.Identity{UserID: claims.UserID}, true
}
