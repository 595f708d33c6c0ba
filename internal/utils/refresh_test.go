package utils

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefreshSecret(t *testing.T) {
	s, err := NewRefreshSecret(30)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(s.Raw)
	require.NoError(t, err, "secret must be URL-safe base64")
	assert.Len(t, raw, refreshSecretBytes)
	assert.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), s.Exp, 5*time.Second)

	other, err := NewRefreshSecret(30)
	require.NoError(t, err)
	assert.NotEqual(t, s.Raw, other.Raw)
}

func TestHashRefreshSecret(t *testing.T) {
	h := HashRefreshSecret("some-secret")
	assert.Len(t, h, 64, "sha256 hex digest")
	assert.Equal(t, h, HashRefreshSecret("some-secret"))
	assert.NotEqual(t, h, HashRefreshSecret("some-secret2"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("longpassword1", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "longpassword1"))
	assert.False(t, VerifyPassword(hash, "wrongpassword"))
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "longpassword1"))
}

func TestPasswordHashingLongInput(t *testing.T) {
	// bcrypt only reads 72 bytes; anything longer must still hash and verify
	// instead of erroring, since the edge accepts passwords up to 128 chars.
	long := strings.Repeat("p", 100)
	hash, err := HashPassword(long, 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, long))
	assert.False(t, VerifyPassword(hash, strings.Repeat("q", 100)))
}

func TestPasswordHashingCostFallback(t *testing.T) {
	// An out-of-range cost must not fail; it falls back to the default.
	hash, err := HashPassword("longpassword1", 99)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "longpassword1"))
}
