package domain

import "time"

// Role enumerates collection-agent roles. Supervisor and admin are elevated.
type Role string

const (
	RoleGestor     Role = "gestor"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// IsElevated reports whether the role bypasses case-ownership restrictions.
func (r Role) IsElevated() bool {
	return r == RoleSupervisor || r == RoleAdmin
}

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	return r == RoleGestor || r == RoleSupervisor || r == RoleAdmin
}

// User is the domain model for collection agents and supervisors.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
