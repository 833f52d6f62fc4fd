package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of user roles. The zero value is not a valid role.
type Role uint8

const (
	RoleAdmin Role = iota + 1
	RoleProjectLead
	RoleDeveloper
)

// Roles lists every valid role in declaration order.
var Roles = []Role{RoleAdmin, RoleProjectLead, RoleDeveloper}

// ParseRole converts a wire name (ADMIN, PROJECT_LEAD, DEVELOPER) into a Role.
// Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADMIN":
		return RoleAdmin, nil
	case "PROJECT_LEAD":
		return RoleProjectLead, nil
	case "DEVELOPER":
		return RoleDeveloper, nil
	}
	return 0, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectLead, RoleDeveloper:
		return true
	}
	return false
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleProjectLead:
		return "PROJECT_LEAD"
	case RoleDeveloper:
		return "DEVELOPER"
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// DisplayName returns the human readable role name.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleProjectLead:
		return "Project Lead"
	case RoleDeveloper:
		return "Developer"
	}
	return "Unknown"
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// CanLeadProjects is true for PROJECT_LEAD and ADMIN.
func (r Role) CanLeadProjects() bool { return r == RoleProjectLead || r == RoleAdmin }

func (r Role) CanManageUsers() bool { return r == RoleAdmin }

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: cannot marshal %s", ErrInvalidInput, r)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
