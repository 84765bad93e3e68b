package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is how long an issued token stays valid. Expiry does not end the
// attendance interval by itself; the inactivity sweeper handles that.
const TokenTTL = 12 * time.Hour

// Claims carries the authenticated identity plus an opaque session token
// that lets the liveness tracker tell browser sessions apart.
type Claims struct {
	IdentityID   uint   `json:"identity_id"`
	SessionToken string `json:"session_token"`
	jwt.RegisteredClaims
}

// IssueToken signs a JWT for an identity with a fresh session token.
func IssueToken(secret string, identityID uint, now time.Time) (signed, sessionToken string, err error) {
	sessionToken = uuid.NewString()
	claims := Claims{
		IdentityID:   identityID,
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err = tok.SignedString([]byte(secret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, sessionToken, nil
}

// ParseToken validates a signed JWT and returns its claims.
func ParseToken(secret, signed string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
