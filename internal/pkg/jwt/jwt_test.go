package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, expiresAt, err := GenerateAccessToken(7, "admin", "ADMIN", secret, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ValidateAccessToken(token, secret)

	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestAccessTokenIDsAreUnique(t *testing.T) {
	first, _, err := GenerateAccessToken(1, "admin", "ADMIN", secret, time.Hour)
	require.NoError(t, err)
	second, _, err := GenerateAccessToken(1, "admin", "ADMIN", secret, time.Hour)
	require.NoError(t, err)

	a, err := ValidateAccessToken(first, secret)
	require.NoError(t, err)
	b, err := ValidateAccessToken(second, secret)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := GenerateAccessToken(1, "admin", "ADMIN", secret, time.Hour)
		require.NoError(t, err)

		_, err = ValidateAccessToken(token, "other")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		token, _, err := GenerateAccessToken(1, "admin", "ADMIN", secret, -time.Minute)
		require.NoError(t, err)

		_, err = ValidateAccessToken(token, secret)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		claims := Claims{
			UserID: 1,
			RegisteredClaims: gojwt.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = ValidateAccessToken(token, secret)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ValidateAccessToken("not-a-token", secret)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
