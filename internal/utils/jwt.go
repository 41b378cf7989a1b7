package utils

import (
	"time" // Token lifetime

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// Claims carries the authenticated user's identity through a session
// token. The request-scoped user ID always comes from here, never from
// ambient state.
type Claims struct {
	UserID               uint   `json:"user_id"`  // Authenticated user ID
	Username             string `json:"username"` // Username at issue time
	jwt.RegisteredClaims        // Standard JWT claims
}

// GenerateJWT issues a signed session token for a user.
func GenerateJWT(userID uint, username, secret string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT parses and validates a session token string.
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
