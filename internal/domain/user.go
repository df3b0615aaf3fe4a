package domain

import (
	"sort"
	"time"
)

// Role is a permission tag carried by a user account.
type Role string

const (
	RoleUserAdmin Role = "USER_ADMIN"
	RoleCafeAdmin Role = "CAFE_ADMIN"
	RoleStaff     Role = "STAFF"
)

// AllRoles lists every known role.
var AllRoles = []Role{RoleUserAdmin, RoleCafeAdmin, RoleStaff}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUserAdmin, RoleCafeAdmin, RoleStaff:
		return true
	}
	return false
}

// User is an employee account.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Position     string
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user carries role.
func (u *User) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// SortRoles orders roles by name and drops duplicates.
func SortRoles(roles []Role) []Role {
	seen := make(map[Role]struct{}, len(roles))
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
