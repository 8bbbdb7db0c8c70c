package enums

import (
	"fmt"
	"strings"
)

// Role is the canonical account role used across the client.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleManager  Role = "manager"
)

var validRoles = []Role{
	RoleCustomer,
	RoleStaff,
	RoleManager,
}

// roleAliases maps the legacy backend spellings onto the canonical set.
var roleAliases = map[string]Role{
	"cliente": RoleCustomer,
	"admin":   RoleManager,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role grants access to the operations panel.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleManager
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// NormalizeRole maps any backend role spelling onto the canonical set.
// Legacy locale variants are translated; anything unrecognized falls back to
// customer, the least-privileged role.
func NormalizeRole(raw string) Role {
	value := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := roleAliases[value]; ok {
		return alias
	}
	if role, err := ParseRole(value); err == nil {
		return role
	}
	return RoleCustomer
}
