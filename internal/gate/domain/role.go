package domain

import (
	"errors"
	"strings"
)

// Role is the closed set of account types.
type Role string

const (
	RoleFarmer    Role = "farmer"
	RoleCustomer  Role = "customer"
	RoleCommunity Role = "community"
	RoleAdmin     Role = "admin"
)

var ErrUnknownRole = errors.New("domain: unknown role")

// ParseRole accepts any of the four roles, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleCustomer, RoleCommunity, RoleAdmin:
		return true
	}
	return false
}

// SelfRegistrable reports whether the role may be chosen at sign up. Admins
// are created through bootstrap only.
func (r Role) SelfRegistrable() bool {
	return r.Valid() && r != RoleAdmin
}

// DashboardRoute is where the frontend sends a user after login.
func (r Role) DashboardRoute() string {
	switch r {
	case RoleFarmer:
		return "/farmer-dashboard"
	case RoleCustomer:
		return "/user-dashboard"
	case RoleAdmin:
		return "/admin-dashboard"
	case RoleCommunity:
		return "/community-dashboard"
	default:
		return "/dashboard"
	}
}

func (r Role) String() string { return string(r) }
