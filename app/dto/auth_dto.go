// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "time"

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,min=3,max=255" example:"juan.delacruz or juan@example.com"`
	Password   string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// AuthUserDTO represents user information returned in authentication responses
type AuthUserDTO struct {
	ID         uint   `json:"id" example:"123"`
	UUID       string `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Username   string `json:"username" example:"juan.delacruz"`
	Email      string `json:"email" example:"juan@example.com"`
	FirstName  string `json:"first_name" example:"Juan"`
	LastName   string `json:"last_name" example:"Dela Cruz"`
	Role       string `json:"role" example:"farm_president"`
	BarangayID *uint  `json:"barangay_id,omitempty" example:"3"`
	IsActive   *bool  `json:"is_active" example:"true"`
	CreatedAt  string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// UserSessionDTO represents session tokens returned after authentication
type UserSessionDTO struct {
	SessionToken string  `json:"session_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	TokenType    string  `json:"token_type" example:"Bearer"`
	ExpiresIn    int     `json:"expires_in" example:"86400"`
	CreatedAt    string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	User    AuthUserDTO    `json:"user"`
	Session UserSessionDTO `json:"session"`
}

// RefreshTokenRequest represents the request to rotate session tokens
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// RefreshTokenResponse represents the response after token rotation
type RefreshTokenResponse struct {
	User    AuthUserDTO    `json:"user"`
	Session UserSessionDTO `json:"session"`
}

// LogoutResponse represents the response after logout
type LogoutResponse struct {
	Message  string    `json:"message" example:"Logged out"`
	LoggedAt time.Time `json:"logged_at" example:"2024-01-15T16:30:00Z"`
}

// Common error codes for authentication operations
const (
	ErrorUserNotFound      = "USER_NOT_FOUND"
	ErrorIncorrectPassword = "INCORRECT_PASSWORD"
	ErrorAccountInactive   = "ACCOUNT_INACTIVE"
	ErrorSessionExpired    = "SESSION_EXPIRED"
	ErrorAccessDenied      = "ACCESS_DENIED"
)
