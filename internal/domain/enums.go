package domain

import "strconv"

// Role represents the access level of a user
type Role int

const (
	RoleAdmin   Role = 1
	RoleManager Role = 2
	RoleUser    Role = 3
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// String returns the role name
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleManager:
		return "manager"
	case RoleUser:
		return "user"
	}
	return "role(" + strconv.Itoa(int(r)) + ")"
}

// RoleValues lists every role value, for use in enum schemas
func RoleValues() []any {
	return []any{int(RoleAdmin), int(RoleManager), int(RoleUser)}
}
