package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// refreshSecretBytes is the entropy of a refresh secret before encoding.
// 48 random bytes is far beyond guessability, which is why storage gets away
// with a plain SHA-256 digest instead of an adaptive hash: the digest only
// keeps the bearer secret out of the database at rest while lookup by exact
// hash stays a cheap indexed equality.
const refreshSecretBytes = 48

// RefreshSecret is a long-lived opaque bearer secret used to obtain new
// access tokens. The Raw value is returned to the client exactly once; only
// its hash is ever persisted.
type RefreshSecret struct {
	Raw string    // URL-safe secret handed to the client
	Exp time.Time // UTC expiration time
}

// NewRefreshSecret returns a cryptographically random, URL-safe refresh
// secret valid for ttlDays days.
func NewRefreshSecret(ttlDays int) (RefreshSecret, error) {
	buf := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return RefreshSecret{}, err
	}
	return RefreshSecret{
		Raw: base64.RawURLEncoding.EncodeToString(buf),
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshSecret returns the SHA-256 hash of a raw refresh secret as a
// hex string, the form stored in the refresh_tokens table.
func HashRefreshSecret(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
