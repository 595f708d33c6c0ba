package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// accessTokenType is the value of the "type" claim stamped into every access
// token. Parsing rejects any other value so a token minted for a different
// purpose can never pass as an access token, signature or not.
const accessTokenType = "access"

var (
	// ErrAccessTokenInvalid covers bad signatures, malformed tokens, wrong
	// signing algorithms and wrong token types.
	ErrAccessTokenInvalid = errors.New("invalid access token")
	// ErrAccessTokenExpired is returned for structurally valid tokens past
	// their expiry.
	ErrAccessTokenExpired = errors.New("access token expired")
)

// AccessToken is a signed JWT access token along with its expiry. Access
// tokens are short-lived, self-contained and never stored server-side.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// accessClaims is the claim set carried by access tokens: the registered
// sub/iat/exp claims plus a type discriminator.
type accessClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// NewAccessToken builds and signs an access token for a user. The subject
// claim is the decimal user id; alg names the HMAC signing method (HS256,
// HS384 or HS512) and ttlMin the token lifetime in minutes.
func NewAccessToken(secret, alg string, userID uint64, ttlMin int) (AccessToken, error) {
	method := jwt.GetSigningMethod(alg)
	if method == nil {
		return AccessToken{}, fmt.Errorf("unknown signing algorithm %q", alg)
	}
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	t := jwt.NewWithClaims(method, accessClaims{
		Type: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature, expiry and type discriminator of
// raw and returns the user id from the subject claim. Only the configured
// algorithm is accepted; a token signed with any other method is rejected
// before the key is even consulted.
func ParseAccessToken(secret, alg, raw string) (uint64, error) {
	claims := &accessClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{alg}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrAccessTokenExpired
		}
		return 0, ErrAccessTokenInvalid
	}
	if !tok.Valid || claims.Type != accessTokenType {
		return 0, ErrAccessTokenInvalid
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrAccessTokenInvalid
	}
	return id, nil
}
