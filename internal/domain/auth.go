package domain

// Principal is the authenticated caller attached to a request after token verification.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
