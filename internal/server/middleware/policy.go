package middleware

import (
	"slices"

	"github.com/postpata/pata/internal/auth"
	"github.com/postpata/pata/internal/domain"
)

// AccessPolicy decides whether a verified identity may proceed.
type AccessPolicy interface {
	Permits(id auth.Identity) bool
	// Accepted lists the roles the policy admits, for error messages.
	Accepted() []domain.Role
}

type rolePolicy struct {
	roles []domain.Role
}

// RequireRoles admits identities holding any of roles. With no roles it
// admits every authenticated identity.
func RequireRoles(roles ...domain.Role) AccessPolicy {
	if len(roles) == 0 {
		roles = domain.Roles()
	}
	return rolePolicy{roles: slices.Clone(roles)}
}

func (p rolePolicy) Permits(id auth.Identity) bool {
	return slices.Contains(p.roles, id.Role)
}

func (p rolePolicy) Accepted() []domain.Role {
	return slices.Clone(p.roles)
}
