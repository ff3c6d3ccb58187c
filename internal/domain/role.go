package domain

import "fmt"

// Role is the closed set of authorization roles carried in tokens.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known tags.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a wire string into a Role, rejecting unknown tags.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// RoleOrStudent converts a wire string into a Role, explicitly falling
// back to the least-privileged tag for unknown values.
func RoleOrStudent(s string) Role {
	if role, err := ParseRole(s); err == nil {
		return role
	}
	return RoleStudent
}
