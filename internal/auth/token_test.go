package auth_test

import (
	"testing"
	"time"

	"github.com/stockroom-labs/stockroom/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars!!"

func TestTokenManager_IssueAndValidate(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)

	token, err := tm.Issue("42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	// Negative lifetime stands in for a token presented after its expiry
	expired := auth.NewTokenManager(testSecret, -time.Second)

	token, err := expired.Issue("42")
	require.NoError(t, err)

	_, err = auth.NewTokenManager(testSecret, time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsTamperedToken(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)

	token, err := tm.Issue("42")
	require.NoError(t, err)

	// Mutating a single character anywhere must cause rejection
	for _, i := range []int{5, len(token) / 2, len(token) - 2} {
		mutated := []byte(token)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		_, err := tm.Validate(string(mutated))
		assert.Error(t, err, "mutation at index %d accepted", i)
	}
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	token, err := auth.NewTokenManager(testSecret, time.Hour).Issue("42")
	require.NoError(t, err)

	_, err = auth.NewTokenManager("some-other-secret-32-chars-long!!!!", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b.c", "eyJhbGciOiJIUzI1NiJ9"} {
		_, err := tm.Validate(input)
		assert.Error(t, err, "input %q accepted", input)
	}
}
