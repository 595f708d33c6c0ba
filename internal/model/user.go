package model

import "time"

// User represents an account row in the `users` table. Accounts come in two
// flavours: password accounts created through registration and Google-only
// accounts created on first federated sign-in. Both credential columns are
// nullable in the schema; an account may carry either one, or both once a
// Google identity has been linked to a password account.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address, the canonical login handle.
//  PasswordHash – bcrypt hash; empty for Google-only accounts.
//  GoogleSub    – Google's stable subject id; empty until linked.
//  IsActive     – false permanently disables authentication.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash (NULL -> "")
	GoogleSub    string    // users.google_sub (NULL -> "")
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// HasPassword reports whether the account can authenticate with a password.
func (u User) HasPassword() bool { return u.PasswordHash != "" }

// RefreshToken models an entry in the `refresh_tokens` table. The plain
// bearer secret is never stored; only its SHA-256 hash. A token is usable
// iff it is not revoked and not past its expiry. Revocation is monotonic:
// once set it is never cleared.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token; rows cascade on account deletion.
//  TokenHash – SHA-256 hex digest of the secret, unique across all rows.
//  Revoked   – whether the token has been spent or revoked.
//  ExpiresAt – expiration timestamp of the token.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    uint64    // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.token_hash
	Revoked   bool      // refresh_tokens.revoked
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}

// Usable reports whether the token can still be exchanged at the given time.
func (t RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}
