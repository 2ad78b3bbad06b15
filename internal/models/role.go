package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRole is returned by ParseRole for strings outside the Role set.
var ErrInvalidRole = errors.New("invalid role")

// Role is the function a user holds within a team.
type Role string

const (
	RoleCoach     Role = "COACH"
	RolePlayer    Role = "PLAYER"
	RoleParent    Role = "PARENT"
	RoleOrganizer Role = "ORGANIZER"
	RoleStaff     Role = "STAFF"
)

// Roles lists every valid role.
var Roles = []Role{RoleCoach, RolePlayer, RoleParent, RoleOrganizer, RoleStaff}

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCoach, RolePlayer, RoleParent, RoleOrganizer, RoleStaff:
		return true
	}
	return false
}

// Privileged reports whether the role counts toward a team's coach invariant.
func (r Role) Privileged() bool {
	return r == RoleCoach
}
