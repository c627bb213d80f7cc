package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesage-ai/codesage/internal/core"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPassword(hash, "s3cret-password"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret-password"))
}

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewTokenManager("test-secret", time.Hour)
	user := &core.User{ID: "user-1", FullName: "Ada Lovelace", Email: "ada@example.com"}

	token, err := mgr.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "Ada Lovelace", claims.FullName)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	mgr := NewTokenManager("test-secret", -time.Minute)
	token, err := mgr.Issue(&core.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = mgr.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Issue(&core.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
