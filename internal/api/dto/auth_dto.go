package dto

import "time"

// LoginRequest identifies the user by email or register.
type LoginRequest struct {
	Email    string `json:"email"`
	Register string `json:"register"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	AccessToken string          `json:"accessToken"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	Session     SessionResponse `json:"session"`
	User        UserResponse    `json:"user"`
}

// SessionResponse describes one login.
type SessionResponse struct {
	ID        string     `json:"id"`
	ExpiresAt time.Time  `json:"expiresAt"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ProfileResponse is returned by GET /auth/profile.
type ProfileResponse struct {
	User    UserResponse    `json:"user"`
	Session SessionResponse `json:"session"`
}
