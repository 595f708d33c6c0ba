// Package identity verifies Google ID tokens against the configured set of
// accepted OAuth client ids. It wraps Google's published verification
// mechanism (signature, issuer and audience checks) and reduces the token
// to the three claims the auth flow cares about.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/idtoken"
)

// verifyTimeout bounds the certificate fetch and signature check. A timeout
// is reported like any other verification failure and is never retried here.
const verifyTimeout = 5 * time.Second

// ErrInvalidAssertion is returned when a token fails verification against
// every accepted audience. The last underlying failure is attached as
// context for diagnostics.
var ErrInvalidAssertion = errors.New("invalid google id token")

// Claims are the verified fields of a Google ID token used downstream.
// EmailVerified is a pointer because the provider may omit the flag; only
// an explicit false means the address is unverified.
type Claims struct {
	Subject       string
	Email         string
	EmailVerified *bool
}

// validateFunc matches idtoken.Validate; swapped out in tests.
type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleVerifier checks a raw ID token's signature and audience. Multiple
// audiences are supported because several client applications (web, mobile)
// may share this backend, each with its own OAuth client id.
type GoogleVerifier struct {
	audiences []string
	validate  validateFunc
}

// NewGoogleVerifier builds a verifier for the given accepted audiences.
// An empty audience set is a configuration error, caught at startup.
func NewGoogleVerifier(audiences []string) (*GoogleVerifier, error) {
	if len(audiences) == 0 {
		return nil, errors.New("no google oauth client ids configured")
	}
	return &GoogleVerifier{audiences: audiences, validate: idtoken.Validate}, nil
}

// Verify tries the token against each accepted audience in order and stops
// at the first match. Only when every audience rejects the token does it
// fail, carrying the last rejection as context.
func (v *GoogleVerifier) Verify(ctx context.Context, raw string) (Claims, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	var lastErr error
	for _, aud := range v.audiences {
		payload, err := v.validate(ctx, raw, aud)
		if err != nil {
			lastErr = err
			continue
		}
		return claimsFromPayload(payload), nil
	}
	return Claims{}, fmt.Errorf("%w: %v", ErrInvalidAssertion, lastErr)
}

func claimsFromPayload(p *idtoken.Payload) Claims {
	c := Claims{Subject: p.Subject}
	if c.Subject == "" {
		if s, ok := p.Claims["sub"].(string); ok {
			c.Subject = s
		}
	}
	if e, ok := p.Claims["email"].(string); ok {
		c.Email = e
	}
	// email_verified arrives as a bool from Google, but some issuers encode
	// it as a string; accept both and leave nil when absent.
	switch ev := p.Claims["email_verified"].(type) {
	case bool:
		c.EmailVerified = &ev
	case string:
		b := ev == "true"
		c.EmailVerified = &b
	}
	return c
}
