package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)

	token, err := tm.Issue("account-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	accountID, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "account-123", accountID)
}

func TestVerifyFailuresAreUniform(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)

	token, err := tm.Issue("account-123")
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":      "not-a-token",
		"empty":        "",
		"tampered":     token + "x",
		"wrong secret": mustIssue(t, NewTokenManager("other-secret", 0), "account-123"),
	}

	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tm.Verify(bad)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Issue("account-123")
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWithoutTTLHasNoExpiry(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)

	token, err := tm.Issue("account-123")
	require.NoError(t, err)

	// Still valid "later": no exp claim was set.
	accountID, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "account-123", accountID)
}

func mustIssue(t *testing.T, tm *TokenManager, id string) string {
	t.Helper()
	token, err := tm.Issue(id)
	require.NoError(t, err)
	return token
}
