package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// KeyPrefix marks API-key-shaped credentials. Everything else presented on
// the Authorization header is treated as a signed token.
const KeyPrefix = "sr_"

// APIKeyManager handles API key generation, hashing, and validation.
// API keys are long-lived: they never expire and are independent of the
// token issuance path.
type APIKeyManager struct {
	prefix string
}

// NewAPIKeyManager creates a new APIKeyManager
func NewAPIKeyManager() *APIKeyManager {
	return &APIKeyManager{
		prefix: KeyPrefix,
	}
}

// Generate creates a new API key in the format: sr_<64 hex chars>
// Returns plaintext key (shown once to user) and SHA256 hash (stored in DB)
func (m *APIKeyManager) Generate() (plainKey, hash string, err error) {
	// 32 random bytes = 256 bits of entropy = 64 hex chars
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	plainKey = m.prefix + hex.EncodeToString(randomBytes)

	hashBytes := sha256.Sum256([]byte(plainKey))
	hash = hex.EncodeToString(hashBytes[:])

	return plainKey, hash, nil
}

// HasKeyShape reports whether the credential looks like an API key
func (m *APIKeyManager) HasKeyShape(credential string) bool {
	return strings.HasPrefix(credential, m.prefix)
}

// ValidateAndHash validates the key format and returns the stored-form hash
func (m *APIKeyManager) ValidateAndHash(plainKey string) (string, error) {
	if !strings.HasPrefix(plainKey, m.prefix) {
		return "", errors.New("invalid API key format: missing prefix")
	}
	if len(plainKey) != len(m.prefix)+64 {
		return "", fmt.Errorf("invalid API key format: expected %d chars, got %d", len(m.prefix)+64, len(plainKey))
	}
	hashBytes := sha256.Sum256([]byte(plainKey))
	return hex.EncodeToString(hashBytes[:]), nil
}

// DisplayPrefix returns the first 12 characters of the key (for display)
func (m *APIKeyManager) DisplayPrefix(plainKey string) (string, error) {
	if len(plainKey) < 12 {
		return "", errors.New("API key too short")
	}
	return plainKey[:12], nil
}

// ConstantTimeHashCompare compares two SHA256 hashes with constant-time comparison
func ConstantTimeHashCompare(hash1, hash2 string) bool {
	return subtle.ConstantTimeCompare([]byte(hash1), []byte(hash2)) == 1
}
