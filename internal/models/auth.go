package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the authenticated student identity inside the token.
type JWTClaims struct {
	StudentID string `json:"student_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// LoginRequest carries the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued access token and profile basics.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	StudentID   string `json:"student_id"`
	Email       string `json:"email"`
}
