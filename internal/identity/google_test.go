package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestNewGoogleVerifierRequiresAudiences(t *testing.T) {
	_, err := NewGoogleVerifier(nil)
	assert.Error(t, err)

	v, err := NewGoogleVerifier([]string{"client-a"})
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestVerifyFirstMatchingAudienceWins(t *testing.T) {
	var tried []string
	v := &GoogleVerifier{
		audiences: []string{"client-a", "client-b", "client-c"},
		validate: func(_ context.Context, token, aud string) (*idtoken.Payload, error) {
			tried = append(tried, aud)
			if aud != "client-b" {
				return nil, errors.New("audience mismatch")
			}
			return &idtoken.Payload{
				Subject: "google-sub-1",
				Claims:  map[string]interface{}{"email": "a@x.com", "email_verified": true},
			}, nil
		},
	}

	claims, err := v.Verify(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, []string{"client-a", "client-b"}, tried, "stops at first match")
	assert.Equal(t, "google-sub-1", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	require.NotNil(t, claims.EmailVerified)
	assert.True(t, *claims.EmailVerified)
}

func TestVerifyAllAudiencesFail(t *testing.T) {
	lastErr := errors.New("bad signature")
	v := &GoogleVerifier{
		audiences: []string{"client-a", "client-b"},
		validate: func(_ context.Context, token, aud string) (*idtoken.Payload, error) {
			return nil, lastErr
		},
	}

	_, err := v.Verify(context.Background(), "raw-token")
	assert.ErrorIs(t, err, ErrInvalidAssertion)
	assert.Contains(t, err.Error(), "bad signature", "last failure kept as context")
}

func TestClaimsFromPayloadVariants(t *testing.T) {
	// email_verified as a string and subject only in the claim map.
	c := claimsFromPayload(&idtoken.Payload{
		Claims: map[string]interface{}{
			"sub":            "s-2",
			"email":          "b@x.com",
			"email_verified": "false",
		},
	})
	assert.Equal(t, "s-2", c.Subject)
	assert.Equal(t, "b@x.com", c.Email)
	require.NotNil(t, c.EmailVerified)
	assert.False(t, *c.EmailVerified)

	// flag absent -> nil, not false
	c = claimsFromPayload(&idtoken.Payload{
		Subject: "s-3",
		Claims:  map[string]interface{}{"email": "c@x.com"},
	})
	assert.Nil(t, c.EmailVerified)
}
