package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("super-secret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "super-secret-pass", hash)

	assert.True(t, CheckPasswordHash("super-secret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, CheckPasswordHash("super-secret-pass", "not-a-hash"))
}

func TestTokenIssueAndVerify(t *testing.T) {
	tm := NewTokenManager(strings.Repeat("k", 32), time.Hour)

	token, expires, err := tm.Issue("admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager(strings.Repeat("a", 32), time.Hour)
	other := NewTokenManager(strings.Repeat("b", 32), time.Hour)

	token, _, err := tm.Issue("admin")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager(strings.Repeat("k", 32), -time.Minute)

	token, _, err := tm.Issue("admin")
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenGarbage(t *testing.T) {
	tm := NewTokenManager(strings.Repeat("k", 32), time.Hour)
	_, err := tm.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
