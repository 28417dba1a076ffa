package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedTokenWithExpiry(t *testing.T, secret string, userID uint, expiresAt time.Time) string {
	t.Helper()

	claims := Claims{
		UserID:   userID,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Generate(42, "alice")
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token := signedTokenWithExpiry(t, "test-secret", 42, time.Now().Add(-time.Minute))

	_, err := issuer.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_AboutToExpire(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token := signedTokenWithExpiry(t, "test-secret", 42, time.Now().Add(time.Minute))

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token := signedTokenWithExpiry(t, "other-secret", 42, time.Now().Add(time.Hour))

	_, err := issuer.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	_, err := issuer.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
