package models

// Role determines what a user is allowed to do. Administrators satisfy every
// role check; agents only their own.
type Role string

const (
	RoleAgent         Role = "agent"
	RoleAdministrator Role = "administrator"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAgent || r == RoleAdministrator
}

// Satisfies reports whether a user holding this role passes a check for the
// required role.
func (r Role) Satisfies(required Role) bool {
	if r == RoleAdministrator {
		return true
	}
	return r == required
}
