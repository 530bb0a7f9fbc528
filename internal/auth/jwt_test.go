package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"room-chat-service/internal/models"
)

func TestTokenPairRoundTrip(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret")
	user := models.User{ID: 42, Username: "alice", Email: "alice@example.com"}

	pair, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestAccessAndRefreshSecretsAreSeparate(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret")
	pair, err := svc.GenerateTokenPair(models.User{ID: 1, Username: "alice"})
	require.NoError(t, err)

	_, err = svc.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret")
	other := NewTokenService("different-secret", "refresh-secret")

	pair, err := other.GenerateTokenPair(models.User{ID: 1, Username: "alice"})
	require.NoError(t, err)

	_, err = svc.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret")

	_, err := svc.VerifyAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
