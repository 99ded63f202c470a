package dto

import (
	"time"

	"github.com/spec-kit/event-service/internal/domain"
)

// SignupRequest payload for new accounts. Secret is accepted as an alias of Password.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
	Secret   string `json:"secret,omitempty"`
	Role     string `json:"role"`
}

// Normalize folds the secret alias into Password.
func (r *SignupRequest) Normalize() {
	if r.Password == "" {
		r.Password = r.Secret
	}
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,maxbytes=72"`
	Secret   string `json:"secret,omitempty"`
}

// Normalize folds the secret alias into Password.
func (r *LoginRequest) Normalize() {
	if r.Password == "" {
		r.Password = r.Secret
	}
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AuthResponse standard response for login.
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// NewUserResponse renders a user without its password hash.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
