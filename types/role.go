package types

import (
	"errors"
	"slices"
	"strings"
)

// Role is the closed set of authorization levels a user can hold.
type Role string

const (
	RoleReader Role = "Reader"
	RoleWriter Role = "Writer"
	RoleAdmin  Role = "Admin"
)

// ErrUnknownRole is returned when a string does not name a Role.
var ErrUnknownRole = errors.New("unknown role")

// Roles lists every valid role in declaration order.
func Roles() []Role {
	return []Role{RoleReader, RoleWriter, RoleAdmin}
}

// ParseRole converts s into a Role. Matching is exact.
func ParseRole(s string) (Role, error) {
	role := Role(strings.TrimSpace(s))
	if !role.Valid() {
		return "", ErrUnknownRole
	}
	return role, nil
}

// Valid reports whether r is one of the predefined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleWriter, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// RoleSet is the set of roles allowed to invoke an operation.
// The empty set means any authenticated caller is allowed.
type RoleSet struct {
	roles []Role
}

// NewRoleSet builds a set from roles, dropping duplicates.
func NewRoleSet(roles ...Role) RoleSet {
	set := RoleSet{roles: make([]Role, 0, len(roles))}
	for _, role := range roles {
		if !slices.Contains(set.roles, role) {
			set.roles = append(set.roles, role)
		}
	}
	return set
}

// AnyRole is the authentication-only role set.
func AnyRole() RoleSet {
	return RoleSet{}
}

// Empty reports whether the set places no role restriction.
func (s RoleSet) Empty() bool {
	return len(s.roles) == 0
}

// Allows reports whether role may pass the set. An empty set allows
// every valid role.
func (s RoleSet) Allows(role Role) bool {
	if s.Empty() {
		return role.Valid()
	}
	return slices.Contains(s.roles, role)
}

// Roles returns a copy of the set members.
func (s RoleSet) Roles() []Role {
	return slices.Clone(s.roles)
}

func (s RoleSet) String() string {
	if s.Empty() {
		return "*"
	}
	names := make([]string, len(s.roles))
	for i, role := range s.roles {
		names[i] = string(role)
	}
	return strings.Join(names, ",")
}
