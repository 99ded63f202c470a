package domain

import (
	"strings"
	"time"
)

// Role is the access level carried by a user and their tokens.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleNormal Role = "normal"
)

// ParseRole returns the role matching s. Empty input defaults to RoleNormal.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleNormal, "":
		return RoleNormal, true
	default:
		return "", false
	}
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleNormal
}

// User is an account able to log in. PasswordHash never leaves the service layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// NormalizeEmail lower-cases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
