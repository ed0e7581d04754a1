package models

import "time"

// User represents a row in the PostgreSQL users table.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // never serialize
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SignUpRequest is the JSON body for POST /api/v1/auth/sign-up.
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInRequest is the JSON body for POST /api/v1/auth/sign-in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleRequest is the JSON body for POST /api/v1/auth/google. The email is
// asserted by the identity provider; no password is checked.
type GoogleRequest struct {
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// UpdateUserRequest carries the optional profile fields for
// POST /api/v1/user/update/{id}. Empty fields are left unchanged.
type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}
