package model

import (
	"github.com/golang-jwt/jwt/v5"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse mirrors what the dashboard stores client side.
type LoginResponse struct {
	JWT            string `json:"jwt"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Role           string `json:"role"`
	ShouldRedirect bool   `json:"shouldRedirect"`
	RedirectURL    string `json:"redirectUrl,omitempty"`
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"actor"`
	ClinicID int64  `json:"clinic_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
