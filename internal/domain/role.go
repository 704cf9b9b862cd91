package domain

import "fmt"

// Role is the access role carried by a profile and its identity claims.
type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

// Roles lists every supported role in display order.
func Roles() []Role {
	return []Role{RoleTenant, RoleLandlord, RoleAdmin}
}

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTenant, RoleLandlord, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts s into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("domain: unknown role %q", s)
	}
	return r, nil
}
