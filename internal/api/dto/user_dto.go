package dto

import (
	"time"

	"github.com/crediflow/collections-service/internal/domain"
)

// RegisterRequest payload for new agent accounts.
type RegisterRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"fullName"`
	Role     domain.Role `json:"role"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public view of an agent account.
type UserResponse struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	FullName string      `json:"fullName"`
	Role     domain.Role `json:"role"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
}
