package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims carried by an access token.
type UserClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
