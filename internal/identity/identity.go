// Package identity verifies bearer credentials issued by an external
// identity provider and turns them into a Claim.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken marks a credential that was offered but rejected:
	// bad signature, expired, wrong audience or issuer, missing subject.
	ErrInvalidToken = errors.New("invalid identity token")
	// ErrProviderUnavailable marks a failure to reach the provider's key set.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// Claim is the verified subject information derived from a bearer token.
// It lives only for the duration of one request.
type Claim struct {
	Subject        string    `json:"sub"`
	Email          string    `json:"email"`
	EmailVerified  bool      `json:"email_verified"`
	Name           string    `json:"name,omitempty"`
	Picture        string    `json:"picture,omitempty"`
	SignInProvider string    `json:"sign_in_provider,omitempty"`
	IssuedAt       time.Time `json:"iat"`
	ExpiresAt      time.Time `json:"exp"`
	// AuthTime is when the user signed in; zero for minted tokens.
	AuthTime time.Time `json:"auth_time"`
}

// Verifier validates an opaque bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claim, error)
}

// tokenClaims is the Firebase ID token claim shape, reused by the locally
// minted HMAC tokens.
type tokenClaims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Firebase      struct {
		SignInProvider string `json:"sign_in_provider,omitempty"`
	} `json:"firebase"`
	jwt.RegisteredClaims
}

func (tc *tokenClaims) toClaim() *Claim {
	c := &Claim{
		Subject:        tc.Subject,
		Email:          tc.Email,
		EmailVerified:  tc.EmailVerified,
		Name:           tc.Name,
		Picture:        tc.Picture,
		SignInProvider: tc.Firebase.SignInProvider,
	}
	if tc.IssuedAt != nil {
		c.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c
}
