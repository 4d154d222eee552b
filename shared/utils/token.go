package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the claim set minted for platform tokens: the user id as
// subject plus jti / iat / exp.
type TokenClaims struct {
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user id.
func (tc *TokenClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(tc.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim %q: %w", tc.Subject, err)
	}
	return uint(id), nil
}

// MintToken signs a new HS256 token for the given user. Returns the compact
// token and its jti.
func MintToken(secret []byte, userID uint, ttl time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()

	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, jti, nil
}

// ParseToken verifies signature and structure of a compact token against the
// shared secret. Expiry is deliberately not validated here: the auth gate
// checks it after the subject has been resolved, so revocation takes
// precedence over expiry in server-side logs.
func ParseToken(secret []byte, tokenString string) (*TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims TokenClaims
	token, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parse failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}
	return &claims, nil
}

// Expired reports whether the claims carry an expiry in the past.
func (tc *TokenClaims) Expired(now time.Time) bool {
	return tc.ExpiresAt != nil && now.After(tc.ExpiresAt.Time)
}
