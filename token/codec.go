package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The backend issues the tokens; this package only consumes them. Signature
// verification happens server-side, so decoding here is deliberately
// unverified: the payload segment is base64url-decoded and parsed as JSON.

// DecodeMain decodes the claims of an organisation token. It never panics;
// malformed tokens yield an error the caller should treat as "no token".
func DecodeMain(tokenString string) (*MainClaims, error) {
	claims := &MainClaims{}
	if err := decodeInto(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// DecodeAccess decodes the claims of a user token.
func DecodeAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := decodeInto(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func decodeInto(tokenString string, claims jwt.Claims) error {
	if tokenString == "" {
		return fmt.Errorf("empty token")
	}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}
	return nil
}

// Expiration returns the exp claim of any token issued by the backend.
func Expiration(tokenString string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if err := decodeInto(tokenString, claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}

// NotBefore returns the nbf claim of any token issued by the backend.
func NotBefore(tokenString string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if err := decodeInto(tokenString, claims); err != nil {
		return time.Time{}, err
	}
	if claims.NotBefore == nil {
		return time.Time{}, fmt.Errorf("token has no nbf claim")
	}
	return claims.NotBefore.Time, nil
}

// Valid reports whether the token is well formed and not yet expired at the
// given instant. The comparison is strict: a token whose exp claim equals the
// current second is already invalid. Empty and undecodable tokens are invalid.
func Valid(tokenString string, now time.Time) bool {
	if tokenString == "" {
		return false
	}
	exp, err := Expiration(tokenString)
	if err != nil {
		return false
	}
	return exp.Unix() > now.Unix()
}
