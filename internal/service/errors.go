package service

import "errors"

// Domain error kinds returned by AuthService. Handlers translate these into
// status codes at the transport boundary with stable, minimal messages; any
// error outside this list is an internal fault and must surface generically
// without detail.
var (
	// ErrEmailTaken: registration (or a federated link) collides with an
	// existing address.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials: password login failed. Unknown email, inactive
	// account, missing password and wrong password all collapse into this
	// one kind so callers cannot probe which addresses exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken: malformed, unmatched or already-spent access or
	// refresh credential.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired: structurally valid credential past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrInactiveAccount: the account exists but has been disabled.
	ErrInactiveAccount = errors.New("inactive account")

	// Google sign-in failures, distinguished internally for diagnostics but
	// all mapped to the same 401 at the boundary.
	ErrGoogleTokenInvalid    = errors.New("invalid google token")
	ErrGoogleClaimsMissing   = errors.New("google token missing sub/email")
	ErrGoogleEmailUnverified = errors.New("google email not verified")
)
