// Package auth provides functionality for generating and parsing JSON Web
// Tokens (JWT) for user authentication. It defines custom claims, token
// generation, and validation logic.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// secretKey is the key used to sign the JWT. It can be overridden at
// startup via SetSecret.
var secretKey = []byte("timebank-secret")

// TokenExpiry defines the token expiration duration.
const TokenExpiry = time.Hour * 3

// SetSecret replaces the signing key with the configured one.
// Call it once at startup before any tokens are issued.
func SetSecret(secret string) {
	if secret != "" {
		secretKey = []byte(secret)
	}
}

// Claims represents the custom JWT claims that include the user ID and
// standard claims. It embeds jwt.RegisteredClaims for standard fields like
// expiration time.
type Claims struct {
	UserID int64
	jwt.RegisteredClaims
}

// GenerateToken creates a new JWT token for a given userID.
// It sets the expiration time based on TokenExpiry and includes the userID
// in the claims.
func GenerateToken(userID int64) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExpiry)),
		},
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// ParseToken validates the provided JWT token string and parses its claims.
// It returns the Claims if the token is valid, or an error otherwise.
func ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
