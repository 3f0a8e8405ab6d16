package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const TokenTypeAccess TokenType = "access"

// Claims are the only supported JWT claims shape for this service.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
}
