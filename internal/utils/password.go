package utils

import "golang.org/x/crypto/bcrypt"

// bcryptInputLimit is the largest input bcrypt hashes; the algorithm ignores
// everything past 72 bytes and Go's implementation rejects longer inputs
// outright. Passwords are truncated to this limit before hashing and before
// verification, so the accepted password length at the edge can exceed it
// without registration failing.
const bcryptInputLimit = 72

// HashPassword returns a bcrypt hash of plain using the given cost. Costs
// outside bcrypt's supported range fall back to the library default so a
// misconfigured deployment still produces usable hashes. The hash string is
// self-describing (version, cost and salt are embedded), so the cost can be
// raised later without invalidating existing hashes.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword(truncateForBcrypt(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
// Malformed hashes simply fail verification, they never panic.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncateForBcrypt(plain)) == nil
}

func truncateForBcrypt(plain string) []byte {
	b := []byte(plain)
	if len(b) > bcryptInputLimit {
		b = b[:bcryptInputLimit]
	}
	return b
}
