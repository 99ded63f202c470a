package auth

import "github.com/spec-kit/event-service/internal/domain"

// Access is the minimum role a route requires.
type Access int

const (
	// AccessAuthenticated admits any caller with a valid token.
	AccessAuthenticated Access = iota
	// AccessAdmin admits only admins.
	AccessAdmin
)

func (a Access) String() string {
	switch a {
	case AccessAuthenticated:
		return "authenticated"
	case AccessAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Allows reports whether role satisfies the requirement.
func (a Access) Allows(role domain.Role) bool {
	switch a {
	case AccessAuthenticated:
		return role.Valid()
	case AccessAdmin:
		return role == domain.RoleAdmin
	default:
		return false
	}
}
