package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HMACVerifier issues and validates HS256 identity tokens signed with a
// shared secret. It stands in for the hosted provider during local
// development.
type HMACVerifier struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

// NewHMACVerifier creates a new HMACVerifier
func NewHMACVerifier(secretKey, issuer string, ttl time.Duration) *HMACVerifier {
	return &HMACVerifier{secretKey: []byte(secretKey), issuer: issuer, ttl: ttl}
}

// IssueToken signs a token carrying the given claim
func (v *HMACVerifier) IssueToken(c Claim) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		Name:          c.Name,
		Picture:       c.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   c.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	claims.Firebase.SignInProvider = "custom"

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the token and returns its claim
func (v *HMACVerifier) Verify(_ context.Context, tokenString string) (*Claim, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, errors.New("missing subject"))
	}
	return claims.toClaim(), nil
}
