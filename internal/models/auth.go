package models

import "github.com/golang-jwt/jwt/v5"

// Roles recognised by the mock authentication endpoints.
const (
	RoleTeacher = "teacher"
	RoleDIET    = "diet"
	RoleSCERT   = "scert"
)

// Claims is the JWT payload issued by the mock login endpoint.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenResponse is returned from login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}
