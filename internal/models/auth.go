package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries caller identity decoded from the access token. Token
// issuance lives in the identity service; this API only validates.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}
