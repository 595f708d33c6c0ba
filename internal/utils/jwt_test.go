package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "HS256", 42, 30)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), tok.Exp, 5*time.Second)

	id, err := ParseAccessToken(testSecret, "HS256", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "HS256", 1, 30)
	require.NoError(t, err)

	_, err = ParseAccessToken("other-secret", "HS256", tok.Token)
	assert.ErrorIs(t, err, ErrAccessTokenInvalid)
}

func TestAccessTokenAlgorithmConfinement(t *testing.T) {
	// Minted with HS512 but the service is configured for HS256: the token
	// must be rejected regardless of the shared secret.
	tok, err := NewAccessToken(testSecret, "HS512", 1, 30)
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, "HS256", tok.Token)
	assert.ErrorIs(t, err, ErrAccessTokenInvalid)
}

func TestAccessTokenExpired(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "HS256", 7, -1)
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, "HS256", tok.Token)
	assert.ErrorIs(t, err, ErrAccessTokenExpired)
}

func TestAccessTokenTypeConfinement(t *testing.T) {
	// A signature-valid token carrying a different type claim must never
	// verify as an access token.
	now := time.Now().UTC()
	claims := accessClaims{
		Type: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, "HS256", signed)
	assert.ErrorIs(t, err, ErrAccessTokenInvalid)
}

func TestAccessTokenMalformed(t *testing.T) {
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := ParseAccessToken(testSecret, "HS256", raw)
		assert.ErrorIs(t, err, ErrAccessTokenInvalid, "raw=%q", raw)
	}
}

func TestAccessTokenNonNumericSubject(t *testing.T) {
	now := time.Now().UTC()
	claims := accessClaims{
		Type: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "someone",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, "HS256", signed)
	assert.ErrorIs(t, err, ErrAccessTokenInvalid)
}

func TestNewAccessTokenUnknownAlgorithm(t *testing.T) {
	_, err := NewAccessToken(testSecret, "HS999", 1, 30)
	assert.Error(t, err)
}
