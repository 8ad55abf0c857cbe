package models

import "time"

// Role determines what a user may do in the admin backend
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

// User represents an admin-backend account
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // bcrypt hash, never serialized
	Email        string     `json:"email,omitempty"`
	FirstName    string     `json:"first_name,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	Language     string     `json:"language,omitempty"`
	Role         Role       `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// CanEdit reports whether the user may use editor-level endpoints
func (u *User) CanEdit() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}

// IsAdmin reports whether the user may use admin-level endpoints
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
