package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
JWT services test cases:
1) GenerateAccessToken succeeds with valid secret
2) GenerateAccessToken fails without secret
3) Round trip: generated token validates back to the same identity
4) ValidateAccessToken rejects invalid signature
5) ValidateAccessToken rejects expired token
6) ValidateAccessToken rejects alg "none"
7) Generated tokens carry a unique jti
*/

func TestGenerateAccessToken_Succeeds(t *testing.T) {
	t.Setenv("JWT_SECRET", "supersecret")
	token, err := GenerateAccessToken("alice", 10, "user")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestGenerateAccessToken_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	token, err := GenerateAccessToken("alice", 10, "user")
	assert.Error(t, err)
	assert.Empty(t, token)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "supersecret")

	token, err := GenerateAccessToken("alice", 10, "admin")
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(10), claims.UserID)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID, "jti should be set")

	// Expiry should land on the fixed TTL (small skew allowed).
	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, AccessTokenTTL-time.Minute)
	assert.LessOrEqual(t, remaining, AccessTokenTTL)
}

func TestValidateAccessToken_InvalidSignature(t *testing.T) {
	t.Setenv("JWT_SECRET", "supersecret")

	// Sign with a different secret so the signature won't verify
	badToken := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID: 1,
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenTTL)),
		},
	})
	signed, err := badToken.SignedString([]byte("othersupersecret"))
	require.NoError(t, err)

	claims, err := ValidateAccessToken(signed)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	t.Setenv("JWT_SECRET", "supersecret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID: 1,
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-40 * time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("supersecret"))
	require.NoError(t, err)

	claims, err := ValidateAccessToken(signed)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestValidateAccessToken_NoneAlgorithm(t *testing.T) {
	t.Setenv("JWT_SECRET", "supersecret")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		UserID: 1,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenTTL)),
		},
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(signed)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestGenerateAccessToken_UniqueJTI(t *testing.T) {
	t.Setenv("JWT_SECRET", "supersecret")

	first, err := GenerateAccessToken("alice", 10, "user")
	require.NoError(t, err)
	second, err := GenerateAccessToken("alice", 10, "user")
	require.NoError(t, err)

	c1, err := ValidateAccessToken(first)
	require.NoError(t, err)
	c2, err := ValidateAccessToken(second)
	require.NoError(t, err)

	assert.NotEqual(t, c1.ID, c2.ID, "Each token should get its own jti")
}
