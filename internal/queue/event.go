// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit trail.
package queue

import "time"

// Event types published to the auth.activity queue.
const (
	EventUserRegistered = "user.registered"
	EventPasswordLogin  = "login.password"
	EventGoogleLogin    = "login.google"
	EventTokenRefreshed = "token.refreshed"
	EventLogout         = "logout"
)

// AuthEvent is published whenever an authentication flow completes. It
// carries enough for downstream consumers to log or alert on account
// activity without querying the primary database. No secrets or token
// material ever ride on the queue.
type AuthEvent struct {
	Type   string    `json:"type"`
	UserID uint64    `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	At     time.Time `json:"at"`
}
