package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, time.Hour)
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(userID, "ada@example.com", []string{"customer"})
	require.NoError(t, err)
	assert.Equal(t, int64(60), pair.ExpiresIn)

	claims, err := svc.ValidateTyped(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, []string{"customer"}, claims.Roles)
	assert.NotEmpty(t, claims.ID)
	assert.Greater(t, claims.Remaining(), time.Duration(0))

	_, err = svc.ValidateTyped(pair.AccessToken, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, err := svc.ValidateTyped(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService("secret", -time.Minute, time.Hour)
	pair, err := svc.GenerateTokenPair(uuid.New(), "a@b.c", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecretAndGarbage(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, time.Hour)
	other := NewJWTService("other", time.Minute, time.Hour)
	pair, err := other.GenerateTokenPair(uuid.New(), "a@b.c", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateTokenPair_SignError(t *testing.T) {
	orig := signJWTToken
	t.Cleanup(func() { signJWTToken = orig })
	signJWTToken = func(*jwt.Token, []byte) (string, error) {
		return "", errors.New("sign failed")
	}

	svc := NewJWTService("secret", time.Minute, time.Hour)
	_, err := svc.GenerateTokenPair(uuid.New(), "a@b.c", nil)
	assert.Error(t, err)
}

func TestClaimsRemaining_NoExpiry(t *testing.T) {
	c := &Claims{}
	assert.Equal(t, time.Duration(0), c.Remaining())
}
